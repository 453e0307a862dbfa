package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/dbctx"
	"github.com/yungbote/accountsync/internal/platform/logger"
)

// BaseDeps is what every aggregate write needs. Zero values fall back to a nop logger,
// a gorm transaction runner over DB and log-backed hooks.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = NewLogHooks(d.Log)
	}
	return d
}

// executeWrite runs fn in one transaction, maps its error to an aggregate code and reports
// the outcome to the hooks.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	mapped := MapError(op, deps.Runner.InTx(ctx, fn))
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	}
	deps.Hooks.ObserveOperation(op, aggregateErrorStatus(mapped), time.Since(start))
	return mapped
}

// aggregateErrorStatus is the hook status for a mapped error: "success" or its code.
func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	return string(domainagg.CodeOf(MapError("aggregate.status", err)))
}
