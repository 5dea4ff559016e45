// Package recurrence generates the current month's child entries from
// recurring parent templates.
package recurrence

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lucasblanco/caja/internal/guard"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

// Engine ensures every started recurring parent has exactly one generated
// child for the current calendar month, respecting installment caps.
//
// The engine runs on every ledger snapshot, and each insert it performs
// re-triggers the subscription that invoked it. Two defenses keep that loop
// from duplicating children: a gate that drops re-entrant runs, and a
// fingerprint of the parent-eligible subset so a snapshot that did not change
// that subset is not re-scanned.
type Engine struct {
	store ledger.Store
	gate  guard.Gate
	now   func() time.Time

	mu       sync.Mutex
	lastScan uint64
}

func New(store ledger.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock overrides the engine's clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run scans the snapshot and inserts any missing current-month children.
// It returns the number of children generated. A run invoked while another
// is in flight is dropped. One parent failing does not stop the others.
func (e *Engine) Run(ctx context.Context, txs []*ledger.Transaction) (int, error) {
	if !e.gate.TryAcquire() {
		slog.Debug("recurrence pass already in flight, dropping")
		return 0, nil
	}
	defer e.gate.Release()

	fp := fingerprint(txs)

	e.mu.Lock()
	seen := e.lastScan == fp
	e.mu.Unlock()

	if seen {
		return 0, nil
	}

	cur := period.Of(e.now())
	generated := 0

	var firstErr error

	for _, parent := range eligibleParents(txs, cur) {
		children := childrenOf(txs, parent.ID)

		if parent.InstallmentsTotal > 0 && len(children)+1 >= parent.InstallmentsTotal {
			continue
		}

		if hasChildIn(children, cur) {
			continue
		}

		child := synthesizeChild(parent, children, cur)

		if _, err := e.store.Insert(ctx, child); err != nil {
			slog.Error("failed to generate recurring child",
				"parent_id", parent.ID,
				"entity", parent.EntityName,
				"period", cur.Key(),
				"error", err)

			if firstErr == nil {
				firstErr = fmt.Errorf("generating child of %s: %w", parent.ID, err)
			}

			continue
		}

		generated++

		slog.Info("generated recurring child",
			"parent_id", parent.ID,
			"entity", parent.EntityName,
			"period", cur.Key())
	}

	e.mu.Lock()
	e.lastScan = fp
	e.mu.Unlock()

	return generated, firstErr
}

// eligibleParents returns recurring templates that have started, sorted by id
// for deterministic processing. A template dated in the current month or
// later has not started yet.
func eligibleParents(txs []*ledger.Transaction, cur period.Period) []*ledger.Transaction {
	var parents []*ledger.Transaction

	for _, tx := range txs {
		if !tx.IsParent() {
			continue
		}

		if tx.Date.IsZero() || !tx.Date.Before(cur.Start()) {
			continue
		}

		parents = append(parents, tx)
	}

	sort.Slice(parents, func(i, j int) bool { return parents[i].ID < parents[j].ID })

	return parents
}

func childrenOf(txs []*ledger.Transaction, parentID string) []*ledger.Transaction {
	var children []*ledger.Transaction

	for _, tx := range txs {
		if tx.ChildOf(parentID) {
			children = append(children, tx)
		}
	}

	return children
}

func hasChildIn(children []*ledger.Transaction, p period.Period) bool {
	for _, c := range children {
		if p.Contains(c.Date) {
			return true
		}
	}

	return false
}

// synthesizeChild copies the parent into a fresh current-month entry.
func synthesizeChild(parent *ledger.Transaction, children []*ledger.Transaction, cur period.Period) *ledger.Transaction {
	child := *parent
	child.ID = ""
	child.CreatedAt = time.Time{}
	child.IsRecurring = false
	child.ParentRecurringID = parent.ID
	child.Date = cur.Start()
	child.Description = fmt.Sprintf("%s (%s)", parent.Description, cur.Start().Format("January 2006"))

	if child.Type == ledger.TypeSaving {
		child.Status = ledger.StatusActive
	} else {
		child.Status = ledger.StatusPending
	}

	if parent.InstallmentsTotal > 0 {
		base := parent.InstallmentNumber
		if base == 0 {
			base = 1
		}

		child.InstallmentNumber = base + len(children) + 1
	}

	return &child
}

// fingerprint hashes the recurrence-relevant subset of the snapshot: parents
// and the per-parent child months. Snapshots that leave this subset unchanged
// (status edits, unrelated inserts) do not warrant a re-scan.
func fingerprint(txs []*ledger.Transaction) uint64 {
	var entries []string

	for _, tx := range txs {
		switch {
		case tx.IsParent():
			entries = append(entries, fmt.Sprintf("p|%s|%d|%d", tx.ID, tx.Date.Unix(), tx.InstallmentsTotal))
		case tx.ParentRecurringID != "":
			entries = append(entries, fmt.Sprintf("c|%s|%s", tx.ParentRecurringID, period.Of(tx.Date).Key()))
		}
	}

	sort.Strings(entries)

	h := fnv.New64a()
	for _, e := range entries {
		_, _ = h.Write([]byte(e))
		_, _ = h.Write([]byte{0})
	}

	return h.Sum64()
}
