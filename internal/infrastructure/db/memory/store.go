// Package memory is a process-local implementation of the repository ports.
// It backs the router tests and the STORE=memory development mode; data is
// lost on restart.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// Store holds every collection behind one mutex so counter increments are
// atomic in the same way a single-document $inc is.
type Store struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	posts    map[string]*domain.BlogPost
	contacts map[string]*domain.Contact
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		posts:    make(map[string]*domain.BlogPost),
		contacts: make(map[string]*domain.Contact),
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository       { return &PostRepository{s: s} }
func (s *Store) Contacts() *ContactRepository { return &ContactRepository{s: s} }

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// page slices items for a 1-based page. A non-positive limit returns
// everything from the offset on.
func page[T any](items []T, pageNum, limit int) []T {
	if pageNum < 1 {
		pageNum = 1
	}
	if limit <= 0 {
		return items
	}
	start := (pageNum - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func sortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
