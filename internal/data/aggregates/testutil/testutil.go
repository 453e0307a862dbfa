// Package testutil holds transaction and hook doubles for account aggregate tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/accountsync/internal/data/aggregates"
	"github.com/yungbote/accountsync/internal/platform/dbctx"
)

var errInjectedRollback = errors.New("injected rollback")

// InjectedTxRunner runs aggregate bodies and fails on demand. With DB set the body runs in
// a real transaction, and an injected commit failure rolls that transaction back.
type InjectedTxRunner struct {
	DB *gorm.DB

	FailBegin  error
	FailCommit error

	mu        sync.Mutex
	Begins    int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.count(&r.Begins)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	if fn == nil {
		r.count(&r.Commits)
		return nil
	}

	var err error
	if r.DB == nil {
		err = fn(dbctx.Context{Ctx: ctx})
		if err == nil && r.FailCommit != nil {
			err = r.FailCommit
		}
	} else {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
				return err
			}
			if r.FailCommit != nil {
				return errInjectedRollback
			}
			return nil
		})
		if errors.Is(err, errInjectedRollback) {
			err = r.FailCommit
		}
	}
	if err != nil {
		r.count(&r.Rollbacks)
		return err
	}
	r.count(&r.Commits)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

// HooksRecorder captures aggregate hook signals.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses returns the observed statuses keyed by operation name, last one wins.
func (h *HooksRecorder) Statuses() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string, len(h.Operations))
	for _, op := range h.Operations {
		out[op.Name] = op.Status
	}
	return out
}
