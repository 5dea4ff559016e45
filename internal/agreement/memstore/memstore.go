// Package memstore provides an in-memory agreement.Store used in tests.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lucasblanco/caja/internal/agreement"
	"github.com/lucasblanco/caja/internal/period"
)

type Store struct {
	mu   sync.Mutex
	ags  map[string]*agreement.Agreement
	subs []chan []*agreement.Agreement

	// SetInvoiceErr, when set, is returned by SetInvoice. Used to exercise
	// the partial-failure path of the billing flow.
	SetInvoiceErr error
}

func New() *Store {
	return &Store{ags: make(map[string]*agreement.Agreement)}
}

func (s *Store) Insert(_ context.Context, ag *agreement.Agreement) (string, error) {
	s.mu.Lock()

	cp := clone(ag)
	cp.ID = uuid.NewString()
	s.ags[cp.ID] = cp
	ag.ID = cp.ID
	s.mu.Unlock()

	s.notify()

	return cp.ID, nil
}

func (s *Store) Get(_ context.Context, id string) (*agreement.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ag, ok := s.ags[id]
	if !ok {
		return nil, agreement.ErrNotFound
	}

	return clone(ag), nil
}

func (s *Store) Update(_ context.Context, ag *agreement.Agreement) error {
	s.mu.Lock()

	if _, ok := s.ags[ag.ID]; !ok {
		s.mu.Unlock()
		return agreement.ErrNotFound
	}

	s.ags[ag.ID] = clone(ag)
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) List(_ context.Context) ([]*agreement.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(), nil
}

func (s *Store) SetInvoice(_ context.Context, id string, p period.Period, rec agreement.InvoiceRecord) error {
	s.mu.Lock()

	if s.SetInvoiceErr != nil {
		s.mu.Unlock()
		return s.SetInvoiceErr
	}

	ag, ok := s.ags[id]
	if !ok {
		s.mu.Unlock()
		return agreement.ErrNotFound
	}

	if ag.Invoices == nil {
		ag.Invoices = make(map[string]agreement.InvoiceRecord)
	}

	ag.Invoices[p.Key()] = rec
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) ClearInvoice(_ context.Context, id string, p period.Period) error {
	s.mu.Lock()

	ag, ok := s.ags[id]
	if !ok {
		s.mu.Unlock()
		return agreement.ErrNotFound
	}

	delete(ag.Invoices, p.Key())
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan []*agreement.Agreement, error) {
	ch := make(chan []*agreement.Agreement, 16)

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

func (s *Store) snapshotLocked() []*agreement.Agreement {
	out := make([]*agreement.Agreement, 0, len(s.ags))
	for _, ag := range s.ags {
		out = append(out, clone(ag))
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

func clone(ag *agreement.Agreement) *agreement.Agreement {
	cp := *ag

	if ag.Invoices != nil {
		cp.Invoices = make(map[string]agreement.InvoiceRecord, len(ag.Invoices))
		for k, v := range ag.Invoices {
			cp.Invoices[k] = v
		}
	}

	return &cp
}
