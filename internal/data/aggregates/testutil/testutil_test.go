package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	dbtestutil "github.com/yungbote/accountsync/internal/data/db/testutil"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	"github.com/yungbote/accountsync/internal/platform/dbctx"
)

func TestInjectedTxRunnerCommitsAndRollsBack(t *testing.T) {
	r := &InjectedTxRunner{}
	if err := r.InTx(context.Background(), func(_ dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bodyErr := errors.New("boom")
	if err := r.InTx(context.Background(), func(_ dbctx.Context) error { return bodyErr }); !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.Begins != 2 || r.Commits != 1 || r.Rollbacks != 1 {
		t.Fatalf("counters begin=%d commit=%d rollback=%d", r.Begins, r.Commits, r.Rollbacks)
	}
}

func TestInjectedTxRunnerFailBegin(t *testing.T) {
	beginErr := errors.New("pool exhausted")
	r := &InjectedTxRunner{FailBegin: beginErr}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error { called = true; return nil })
	if !errors.Is(err, beginErr) || called {
		t.Fatalf("expected begin failure without running the body, err=%v called=%v", err, called)
	}
}

func TestInjectedTxRunnerFailCommitDiscardsWrites(t *testing.T) {
	gdb := dbtestutil.SQLite(t)
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{DB: gdb, FailCommit: commitErr}

	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&store.AccountData{Number: "10-1"}).Error
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit err, got %v", err)
	}
	var n int64
	if err := gdb.Model(&store.AccountData{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected the insert rolled back, found %d rows", n)
	}
	if r.Rollbacks != 1 || r.Commits != 0 {
		t.Fatalf("counters commit=%d rollback=%d", r.Commits, r.Rollbacks)
	}
}

func TestHooksRecorderStatuses(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Accounts.Account.ApplyExport", "conflict", time.Millisecond)
	h.ObserveOperation("Accounts.Account.ApplyExport", "success", time.Millisecond)
	h.IncConflict("Accounts.Account.ApplyExport")
	h.IncRetry("Accounts.Account.RecordImportResults")

	if got := h.Statuses()["Accounts.Account.ApplyExport"]; got != "success" {
		t.Fatalf("last status: got %q", got)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 1 {
		t.Fatalf("conflicts=%v retries=%v", h.Conflicts, h.Retries)
	}
}
