// Package store implements the ledger transaction store on MongoDB.
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

	"github.com/lucasblanco/caja/internal/ledger"
)

const collectionName = "transactions"

type Store struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, coll: db.Collection(collectionName)}
}

// transactionDoc is the stored form of a ledger.Transaction. Amounts are
// stored as doubles; the bson keys are the interop contract and must not
// change.
type transactionDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Type              string             `bson:"type"`
	EntityName        string             `bson:"entityName,omitempty"`
	Category          string             `bson:"category,omitempty"`
	Description       string             `bson:"description,omitempty"`
	CUIT              string             `bson:"cuit,omitempty"`
	Currency          string             `bson:"currency"`
	Amount            float64            `bson:"amount"`
	Status            string             `bson:"status"`
	Date              time.Time          `bson:"date"`
	AccountID         string             `bson:"accountId,omitempty"`
	IsRecurring       bool               `bson:"isRecurring,omitempty"`
	ParentRecurringID string             `bson:"parentRecurringId,omitempty"`
	InstallmentsTotal int                `bson:"installmentsTotal,omitempty"`
	InstallmentNumber int                `bson:"installmentNumber,omitempty"`
	IsInitial         bool               `bson:"isInitial,omitempty"`
	AgreementID       string             `bson:"agreementId,omitempty"`
	PeriodKey         string             `bson:"periodKey,omitempty"`
	TransferID        string             `bson:"transferId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	CreatedBy         string             `bson:"createdBy,omitempty"`
}

func toDoc(tx *ledger.Transaction) (*transactionDoc, error) {
	doc := &transactionDoc{
		Type:              string(tx.Type),
		EntityName:        tx.EntityName,
		Category:          tx.Category,
		Description:       tx.Description,
		CUIT:              tx.CUIT,
		Currency:          string(tx.Currency),
		Amount:            tx.Amount.InexactFloat64(),
		Status:            string(tx.Status),
		Date:              tx.Date,
		AccountID:         tx.AccountID,
		IsRecurring:       tx.IsRecurring,
		ParentRecurringID: tx.ParentRecurringID,
		InstallmentsTotal: tx.InstallmentsTotal,
		InstallmentNumber: tx.InstallmentNumber,
		IsInitial:         tx.IsInitial,
		AgreementID:       tx.AgreementID,
		PeriodKey:         tx.PeriodKey,
		TransferID:        tx.TransferID,
		CreatedAt:         tx.CreatedAt,
		CreatedBy:         tx.CreatedBy,
	}

	if tx.ID != "" {
		oid, err := primitive.ObjectIDFromHex(tx.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id %q: %w", tx.ID, err)
		}

		doc.ID = oid
	}

	return doc, nil
}

func (d *transactionDoc) toTransaction() *ledger.Transaction {
	return &ledger.Transaction{
		ID:                d.ID.Hex(),
		Type:              ledger.Type(d.Type),
		EntityName:        d.EntityName,
		Category:          d.Category,
		Description:       d.Description,
		CUIT:              d.CUIT,
		Currency:          ledger.Currency(d.Currency),
		Amount:            decimal.NewFromFloat(d.Amount),
		Status:            ledger.Status(d.Status),
		Date:              d.Date,
		AccountID:         d.AccountID,
		IsRecurring:       d.IsRecurring,
		ParentRecurringID: d.ParentRecurringID,
		InstallmentsTotal: d.InstallmentsTotal,
		InstallmentNumber: d.InstallmentNumber,
		IsInitial:         d.IsInitial,
		AgreementID:       d.AgreementID,
		PeriodKey:         d.PeriodKey,
		TransferID:        d.TransferID,
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
	}
}

func (s *Store) Insert(ctx context.Context, tx *ledger.Transaction) (string, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	doc, err := toDoc(tx)
	if err != nil {
		return "", err
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("inserting transaction: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	tx.ID = oid.Hex()

	return tx.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*ledger.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}

	var doc transactionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return doc.toTransaction(), nil
}

func (s *Store) Update(ctx context.Context, tx *ledger.Transaction) error {
	doc, err := toDoc(tx)
	if err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if res.MatchedCount == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status ledger.Status) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ledger.ErrNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("updating transaction status: %w", err)
	}

	if res.MatchedCount == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ledger.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if res.DeletedCount == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*ledger.Transaction, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}

	txs := make([]*ledger.Transaction, len(docs))
	for i := range docs {
		txs[i] = docs[i].toTransaction()
	}

	return txs, nil
}

// InsertBatch writes all transactions inside a single multi-document
// transaction, so the batch is applied all-or-nothing.
func (s *Store) InsertBatch(ctx context.Context, txs []*ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(txs))

	for i, tx := range txs {
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = now
		}

		doc, err := toDoc(tx)
		if err != nil {
			return err
		}

		docs[i] = doc
	}

	sess, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return s.coll.InsertMany(sc, docs)
	})
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	if inserted, ok := res.(*mongo.InsertManyResult); ok {
		assignBatchIDs(txs, inserted.InsertedIDs)
	}

	return nil
}

// assignBatchIDs writes the driver-generated ids back onto the inserted
// transactions. InsertMany reports ids positionally in res.InsertedIDs; the
// structs passed in are never mutated by the driver itself.
func assignBatchIDs(txs []*ledger.Transaction, ids []any) {
	for i, id := range ids {
		if i >= len(txs) {
			return
		}

		if oid, ok := id.(primitive.ObjectID); ok {
			txs[i].ID = oid.Hex()
		}
	}
}

// Watch re-reads and delivers the full transaction set after every change
// event, starting with an initial snapshot. This mirrors the snapshot
// semantics the engines are built around: subscribers always see the whole
// current set, never a diff.
func (s *Store) Watch(ctx context.Context) (<-chan []*ledger.Transaction, error) {
	stream, err := s.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watching transactions: %w", err)
	}

	ch := make(chan []*ledger.Transaction, 1)

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
			slog.Error("transaction change stream closed", "error", err)
		}
	}()

	return ch, nil
}

func (s *Store) deliver(ctx context.Context, ch chan<- []*ledger.Transaction) bool {
	txs, err := s.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}

		slog.Error("failed to load transaction snapshot", "error", err)

		return true
	}

	select {
	case ch <- txs:
		return true
	case <-ctx.Done():
		return false
	}
}
