// Package metrics defines and registers all custom Prometheus metrics for the
// portfolio API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked", "inactive" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - scope: "login", "like" or "contact"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by rate limiting.",
	},
	[]string{"scope"},
)

// ── Blog metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts newly created posts.
// Label:
//   - status: initial status ("draft", "published" or "archived")
var PostsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of blog posts created, by initial status.",
	},
	[]string{"status"},
)

var PostViewsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_views_total",
		Help:      "Total number of recorded blog post views.",
	},
)

var PostLikesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_likes_total",
		Help:      "Total number of recorded blog post likes.",
	},
)

// ── Contact metrics ───────────────────────────────────────────────────────────

var ContactMessagesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_messages_total",
		Help:      "Total number of contact form submissions stored.",
	},
)

// NotificationQueueDepth tracks jobs waiting in the notification queue.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of contact notifications waiting to be sent.",
	},
)

// NotificationsDroppedTotal counts jobs rejected because the queue was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of contact notifications dropped because the queue was full.",
	},
)

// NotificationDuration measures how long a single notification takes to send.
// Label:
//   - result: "ok" or "error"
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a contact notification from dequeue to delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
