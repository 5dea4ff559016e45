// Package store implements the agreement store on MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lucasblanco/caja/internal/agreement"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

const collectionName = "agreements"

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(collectionName)}
}

type invoiceDoc struct {
	Sent     bool      `bson:"sent"`
	Date     time.Time `bson:"date"`
	IncomeID string    `bson:"incomeId"`
}

type agreementDoc struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty"`
	Name        string                `bson:"name"`
	CUIT        string                `bson:"cuit,omitempty"`
	Description string                `bson:"description,omitempty"`
	Frequency   string                `bson:"frequency"`
	Currency    string                `bson:"currency"`
	Amount      float64               `bson:"amount"`
	HasInvoice  bool                  `bson:"hasInvoice"`
	IsActive    bool                  `bson:"isActive"`
	Invoices    map[string]invoiceDoc `bson:"invoices,omitempty"`
}

func toDoc(ag *agreement.Agreement) (*agreementDoc, error) {
	doc := &agreementDoc{
		Name:        ag.Name,
		CUIT:        ag.CUIT,
		Description: ag.Description,
		Frequency:   string(ag.Frequency),
		Currency:    string(ag.Currency),
		Amount:      ag.Amount.InexactFloat64(),
		HasInvoice:  ag.HasInvoice,
		IsActive:    ag.IsActive,
	}

	if len(ag.Invoices) > 0 {
		doc.Invoices = make(map[string]invoiceDoc, len(ag.Invoices))
		for key, rec := range ag.Invoices {
			doc.Invoices[key] = invoiceDoc{Sent: rec.Sent, Date: rec.Date, IncomeID: rec.IncomeID}
		}
	}

	if ag.ID != "" {
		oid, err := primitive.ObjectIDFromHex(ag.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid agreement id %q: %w", ag.ID, err)
		}

		doc.ID = oid
	}

	return doc, nil
}

func (d *agreementDoc) toAgreement() *agreement.Agreement {
	ag := &agreement.Agreement{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		CUIT:        d.CUIT,
		Description: d.Description,
		Frequency:   agreement.Frequency(d.Frequency),
		Currency:    ledger.Currency(d.Currency),
		Amount:      decimal.NewFromFloat(d.Amount),
		HasInvoice:  d.HasInvoice,
		IsActive:    d.IsActive,
	}

	if len(d.Invoices) > 0 {
		ag.Invoices = make(map[string]agreement.InvoiceRecord, len(d.Invoices))
		for key, rec := range d.Invoices {
			ag.Invoices[key] = agreement.InvoiceRecord{Sent: rec.Sent, Date: rec.Date, IncomeID: rec.IncomeID}
		}
	}

	return ag
}

func (s *Store) Insert(ctx context.Context, ag *agreement.Agreement) (string, error) {
	doc, err := toDoc(ag)
	if err != nil {
		return "", err
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("inserting agreement: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	ag.ID = oid.Hex()

	return ag.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*agreement.Agreement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, agreement.ErrNotFound
	}

	var doc agreementDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, agreement.ErrNotFound
		}

		return nil, fmt.Errorf("getting agreement: %w", err)
	}

	return doc.toAgreement(), nil
}

func (s *Store) Update(ctx context.Context, ag *agreement.Agreement) error {
	doc, err := toDoc(ag)
	if err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("updating agreement: %w", err)
	}

	if res.MatchedCount == 0 {
		return agreement.ErrNotFound
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*agreement.Agreement, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing agreements: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []agreementDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding agreements: %w", err)
	}

	ags := make([]*agreement.Agreement, len(docs))
	for i := range docs {
		ags[i] = docs[i].toAgreement()
	}

	return ags, nil
}

func (s *Store) SetInvoice(ctx context.Context, id string, p period.Period, rec agreement.InvoiceRecord) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return agreement.ErrNotFound
	}

	field := "invoices." + p.Key()
	update := bson.M{"$set": bson.M{field: invoiceDoc{Sent: rec.Sent, Date: rec.Date, IncomeID: rec.IncomeID}}}

	res, err := s.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("setting invoice %s: %w", p.Key(), err)
	}

	if res.MatchedCount == 0 {
		return agreement.ErrNotFound
	}

	return nil
}

func (s *Store) ClearInvoice(ctx context.Context, id string, p period.Period) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return agreement.ErrNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$unset": bson.M{"invoices." + p.Key(): ""}})
	if err != nil {
		return fmt.Errorf("clearing invoice %s: %w", p.Key(), err)
	}

	if res.MatchedCount == 0 {
		return agreement.ErrNotFound
	}

	return nil
}

// Watch re-reads and delivers the full agreement set after every change
// event, starting with an initial snapshot.
func (s *Store) Watch(ctx context.Context) (<-chan []*agreement.Agreement, error) {
	stream, err := s.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watching agreements: %w", err)
	}

	ch := make(chan []*agreement.Agreement, 1)

	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		if !s.deliver(ctx, ch) {
			return
		}

		for stream.Next(ctx) {
			if !s.deliver(ctx, ch) {
				return
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			slog.Error("agreement change stream closed", "error", err)
		}
	}()

	return ch, nil
}

func (s *Store) deliver(ctx context.Context, ch chan<- []*agreement.Agreement) bool {
	ags, err := s.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}

		slog.Error("failed to load agreement snapshot", "error", err)

		return true
	}

	select {
	case ch <- ags:
		return true
	case <-ctx.Done():
		return false
	}
}
