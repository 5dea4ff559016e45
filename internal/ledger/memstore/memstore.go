// Package memstore provides an in-memory ledger.Store used in tests.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lucasblanco/caja/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	txs  map[string]*ledger.Transaction
	subs []chan []*ledger.Transaction

	// InsertErr, when set, is returned by Insert for any transaction it
	// rejects. Used to exercise continue-on-error paths.
	InsertErr func(tx *ledger.Transaction) error
}

func New() *Store {
	return &Store{txs: make(map[string]*ledger.Transaction)}
}

func (s *Store) Insert(_ context.Context, tx *ledger.Transaction) (string, error) {
	s.mu.Lock()

	if s.InsertErr != nil {
		if err := s.InsertErr(tx); err != nil {
			s.mu.Unlock()
			return "", err
		}
	}

	cp := *tx
	cp.ID = uuid.NewString()
	s.txs[cp.ID] = &cp
	tx.ID = cp.ID
	s.mu.Unlock()

	s.notify()

	return cp.ID, nil
}

func (s *Store) Get(_ context.Context, id string) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *tx

	return &cp, nil
}

func (s *Store) Update(_ context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()

	if _, ok := s.txs[tx.ID]; !ok {
		s.mu.Unlock()
		return ledger.ErrNotFound
	}

	cp := *tx
	s.txs[tx.ID] = &cp
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status ledger.Status) error {
	s.mu.Lock()

	tx, ok := s.txs[id]
	if !ok {
		s.mu.Unlock()
		return ledger.ErrNotFound
	}

	tx.Status = status
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()

	if _, ok := s.txs[id]; !ok {
		s.mu.Unlock()
		return ledger.ErrNotFound
	}

	delete(s.txs, id)
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) List(_ context.Context) ([]*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(), nil
}

func (s *Store) InsertBatch(ctx context.Context, txs []*ledger.Transaction) error {
	s.mu.Lock()

	if s.InsertErr != nil {
		for _, tx := range txs {
			if err := s.InsertErr(tx); err != nil {
				s.mu.Unlock()
				return err
			}
		}
	}

	for _, tx := range txs {
		cp := *tx
		cp.ID = uuid.NewString()
		s.txs[cp.ID] = &cp
		tx.ID = cp.ID
	}
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan []*ledger.Transaction, error) {
	ch := make(chan []*ledger.Transaction, 16)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				close(ch)

				break
			}
		}
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *Store) snapshotLocked() []*ledger.Transaction {
	out := make([]*ledger.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		cp := *tx
		out = append(out, &cp)
	}

	return out
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub <- s.snapshotLocked():
		default:
		}
	}
}
