// Package watch drives the generation engines from store subscriptions.
//
// Both stores deliver the entire current record set on every change, so the
// engines' own writes come back around through the same loops; the engines
// carry the re-entrancy defenses, the watcher just feeds them snapshots.
package watch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lucasblanco/caja/internal/agreement"
	"github.com/lucasblanco/caja/internal/invoicing"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/recurrence"
)

type Watcher struct {
	ledgerStore    ledger.Store
	agreementStore agreement.Store
	recurrence     *recurrence.Engine
	invoicing      *invoicing.Engine
}

func New(ledgerStore ledger.Store, agreementStore agreement.Store, rec *recurrence.Engine, inv *invoicing.Engine) *Watcher {
	return &Watcher{
		ledgerStore:    ledgerStore,
		agreementStore: agreementStore,
		recurrence:     rec,
		invoicing:      inv,
	}
}

// Run subscribes to both stores and feeds every snapshot to its engine until
// ctx is cancelled. Engine failures are logged and do not stop the loops; a
// failed snapshot is simply superseded by the next one.
func (w *Watcher) Run(ctx context.Context) error {
	txCh, err := w.ledgerStore.Watch(ctx)
	if err != nil {
		return err
	}

	agCh, err := w.agreementStore.Watch(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case txs, ok := <-txCh:
				if !ok {
					return nil
				}

				n, err := w.recurrence.Run(ctx, txs)
				if err != nil {
					slog.Error("recurrence pass finished with errors", "generated", n, "error", err)
				} else if n > 0 {
					slog.Info("recurrence pass complete", "generated", n)
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ags, ok := <-agCh:
				if !ok {
					return nil
				}

				n, err := w.invoicing.ProcessMonthly(ctx, ags)
				if err != nil {
					slog.Error("agreement pass finished with errors", "processed", n, "error", err)
				} else if n > 0 {
					slog.Info("agreement pass complete", "processed", n)
				}
			}
		}
	})

	return g.Wait()
}
