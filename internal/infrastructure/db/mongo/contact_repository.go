package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const contactsCollection = "contacts"

// ContactRepository implements ports.ContactRepository using MongoDB.
type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{col: db.Collection(contactsCollection)}
}

type mongoContact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Subject   string             `bson:"subject"`
	Message   string             `bson:"message"`
	Status    string             `bson:"status"`
	IPAddress string             `bson:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (m mongoContact) toDomain() *domain.Contact {
	return &domain.Contact{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    domain.ContactStatus(m.Status),
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoContact{
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    string(c.Status),
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	oid, err := objectID(id, domain.ErrContactNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoContact
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ContactRepository) List(ctx context.Context, f ports.ListContactsFilter) ([]*domain.Contact, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find contacts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoContact
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode contacts: %w", err)
	}

	items := make([]*domain.Contact, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus, now time.Time) (*domain.Contact, error) {
	oid, err := objectID(id, domain.ErrContactNotFound)
	if err != nil {
		return nil, err
	}
	return r.setStatus(ctx, bson.M{"_id": oid}, status, now)
}

// MarkAsRead only touches messages still in the new state; anything else is
// returned as stored.
func (r *ContactRepository) MarkAsRead(ctx context.Context, id string, now time.Time) (*domain.Contact, error) {
	oid, err := objectID(id, domain.ErrContactNotFound)
	if err != nil {
		return nil, err
	}

	c, err := r.setStatus(ctx, bson.M{"_id": oid, "status": string(domain.ContactNew)}, domain.ContactRead, now)
	if errors.Is(err, domain.ErrContactNotFound) {
		return r.FindByID(ctx, id)
	}
	return c, err
}

func (r *ContactRepository) setStatus(ctx context.Context, filter bson.M, status domain.ContactStatus, now time.Time) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": now}}

	var mc mongoContact
	if err := r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrContactNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
