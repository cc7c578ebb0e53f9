package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsepr/storefront/internal/core/domain"
)

const attemptsCollection = "checkout_attempts"

// AttemptJournal implements ports.AttemptJournal using MongoDB.
type AttemptJournal struct {
	db *mongo.Database
}

// NewAttemptJournal creates a new AttemptJournal.
func NewAttemptJournal(db *mongo.Database) *AttemptJournal {
	return &AttemptJournal{db: db}
}

// intentDocument stores money as a decimal string; bson has no encoder for
// decimal.Decimal.
type intentDocument struct {
	ID          string `bson:"id"`
	Amount      int64  `bson:"amount"`
	Currency    string `bson:"currency"`
	TotalAmount string `bson:"total_amount"`
}

type attemptDocument struct {
	ID        string             `bson:"_id"`
	UserID    int64              `bson:"user_id"`
	Items     []domain.OrderItem `bson:"items"`
	Address   string             `bson:"address"`
	Intent    *intentDocument    `bson:"intent,omitempty"`
	State     string             `bson:"state"`
	Outcome   string             `bson:"outcome"`
	Reason    string             `bson:"reason,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toDocument(a *domain.CheckoutAttempt) attemptDocument {
	doc := attemptDocument{
		ID:        a.ID,
		UserID:    a.UserID,
		Items:     a.Items,
		Address:   a.Address,
		State:     string(a.State),
		Outcome:   string(a.Outcome),
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
	if a.Intent != nil {
		doc.Intent = &intentDocument{
			ID:          a.Intent.ID,
			Amount:      a.Intent.Amount,
			Currency:    a.Intent.Currency,
			TotalAmount: a.Intent.TotalAmount.String(),
		}
	}
	return doc
}

func (d attemptDocument) toDomain() (*domain.CheckoutAttempt, error) {
	a := &domain.CheckoutAttempt{
		ID:        d.ID,
		UserID:    d.UserID,
		Items:     d.Items,
		Address:   d.Address,
		State:     domain.CheckoutState(d.State),
		Outcome:   domain.CheckoutOutcome(d.Outcome),
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Intent != nil {
		total, err := decimal.NewFromString(d.Intent.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("attempt %s: total amount: %w", d.ID, err)
		}
		a.Intent = &domain.PaymentIntent{
			ID:          d.Intent.ID,
			Amount:      d.Intent.Amount,
			Currency:    d.Intent.Currency,
			TotalAmount: total,
		}
	}
	return a, nil
}

// Record upserts the attempt by id, so a replayed record overwrites rather
// than duplicates.
func (j *AttemptJournal) Record(ctx context.Context, attempt *domain.CheckoutAttempt) error {
	doc := toDocument(attempt)
	_, err := j.db.Collection(attemptsCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("record attempt %s: %w", attempt.ID, err)
	}
	return nil
}

// ListByUser returns a user's attempts, newest first.
func (j *AttemptJournal) ListByUser(ctx context.Context, userID int64, limit int64) ([]domain.CheckoutAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := j.db.Collection(attemptsCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []attemptDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	out := make([]domain.CheckoutAttempt, 0, len(docs))
	for _, d := range docs {
		a, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}
