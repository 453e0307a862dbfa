package accountsync

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/accountsync/internal/data/aggregates"
	dbtestutil "github.com/yungbote/accountsync/internal/data/db/testutil"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/ctxutil"
	"github.com/yungbote/accountsync/internal/platform/logger"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

type fakeRegistry struct {
	mu          sync.Mutex
	house       *registry.HouseExportResult
	accounts    []registry.AccountExportResult
	houseCalls  int
	imported    [][]registry.ImportAccountRequestAccount
	importReply func(reqs []registry.ImportAccountRequestAccount) []registry.ImportResult
}

func (f *fakeRegistry) ExportHouse(ctx context.Context, fias string) (*registry.HouseExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.houseCalls++
	if f.house == nil {
		return nil, fmt.Errorf("house %s not found", fias)
	}
	return f.house, nil
}

func (f *fakeRegistry) ExportAccounts(ctx context.Context, fias string) ([]registry.AccountExportResult, error) {
	return f.accounts, nil
}

func (f *fakeRegistry) ImportAccounts(ctx context.Context, reqs []registry.ImportAccountRequestAccount) ([]registry.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, reqs)
	if f.importReply != nil {
		return f.importReply(reqs), nil
	}
	out := make([]registry.ImportResult, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, registry.ImportResult{TransportGUID: r.TransportGUID, GUID: "reg-" + r.AccountNumber})
	}
	return out, nil
}

func testHouse() *registry.HouseExportResult {
	h := &registry.HouseExportResult{FIASHouseGUID: "fias-1"}
	for i := 1; i <= 6; i++ {
		h.ResidentialPremises = append(h.ResidentialPremises, registry.ResidentialPremiseExport{
			PremisesNum:  fmt.Sprint(i),
			PremisesGUID: fmt.Sprintf("prem-%d", i),
		})
	}
	return h
}

func testExport(i int) registry.AccountExportResult {
	return registry.AccountExportResult{
		AccountNumber:        fmt.Sprintf("100-%d", i),
		AccountType:          registry.AccountKindUO,
		TotalSquare:          decimal.NewFromInt(int64(30 + i)),
		TotalSquareSpecified: true,
		Accommodation: []registry.Accommodation{
			{Kind: registry.AccommodationPremises, GUID: fmt.Sprintf("prem-%d", i)},
		},
		PayerInfo: &registry.PayerInfo{Individual: &registry.IndividualPayer{Surname: fmt.Sprintf("Payer%d", i), FirstName: "A"}},
	}
}

func newTestService(t *testing.T, reg *fakeRegistry) (*Service, *aggregatesFixture) {
	t.Helper()
	gdb := dbtestutil.SQLite(t)
	agg := aggregates.NewAccountAggregate(aggregates.AccountAggregateDeps{
		Base: aggregates.BaseDeps{DB: gdb, Log: logger.Nop()},
	})
	svc, err := New(Deps{Log: logger.Nop(), Accounts: agg, Registry: reg, Concurrency: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, &aggregatesFixture{count: func(model any) int64 {
		var n int64
		if err := gdb.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		return n
	}}
}

type aggregatesFixture struct {
	count func(model any) int64
}

func TestPullHouse(t *testing.T) {
	reg := &fakeRegistry{house: testHouse()}
	for i := 1; i <= 5; i++ {
		reg.accounts = append(reg.accounts, testExport(i))
	}
	bad := testExport(6)
	bad.AccountType = "isUnknownAccount"
	reg.accounts = append(reg.accounts, bad)
	missing := testExport(7)
	reg.accounts = append(reg.accounts, missing)

	svc, fx := newTestService(t, reg)
	report, err := svc.PullHouse(context.Background(), 9, "fias-1")
	if err != nil {
		t.Fatalf("PullHouse: %v", err)
	}
	if report.Accounts != 7 || report.Created != 6 || report.Updated != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Unresolved != 1 {
		t.Fatalf("expected 1 unresolved accommodation, got %d", report.Unresolved)
	}
	if len(report.Failures) != 1 || report.Failures[0].AccountNumber != "100-6" {
		t.Fatalf("failures: %+v", report.Failures)
	}
	if !domainagg.IsCode(report.Failures[0].Err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", report.Failures[0].Err)
	}
	if n := fx.count(&store.AccountData{}); n != 6 {
		t.Fatalf("stored accounts: %d", n)
	}

	again, err := svc.PullHouse(context.Background(), 9, "fias-1")
	if err != nil {
		t.Fatalf("PullHouse (again): %v", err)
	}
	if again.Created != 0 || again.Updated != 6 {
		t.Fatalf("second pull should update: %+v", again)
	}
	if reg.houseCalls != 2 {
		t.Fatalf("without redis every pull fetches the house, got %d calls", reg.houseCalls)
	}
}

func TestPullHouseRequiresFIAS(t *testing.T) {
	svc, _ := newTestService(t, &fakeRegistry{house: testHouse()})
	if _, err := svc.PullHouse(context.Background(), 1, " "); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	svc, _ = newTestService(t, &fakeRegistry{})
	if _, err := svc.PullHouse(context.Background(), 1, "fias-x"); err == nil {
		t.Fatalf("expected house fetch error")
	}
}

func TestPushAccount(t *testing.T) {
	reg := &fakeRegistry{house: testHouse(), accounts: []registry.AccountExportResult{testExport(1)}}
	svc, _ := newTestService(t, reg)
	if _, err := svc.PullHouse(context.Background(), 9, "fias-1"); err != nil {
		t.Fatalf("PullHouse: %v", err)
	}

	report, err := svc.PushAccount(context.Background(), "100-1", "create", "fias-1")
	if err != nil {
		t.Fatalf("PushAccount: %v", err)
	}
	if report.Requests != 1 || report.GUID != "reg-100-1" || len(report.Failures) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(reg.imported) != 1 || reg.imported[0][0].Accommodation[0].GUID != "prem-1" {
		t.Fatalf("unexpected import payload: %+v", reg.imported)
	}

	update, err := svc.PushAccount(context.Background(), "100-1", "update", "")
	if err != nil {
		t.Fatalf("PushAccount update: %v", err)
	}
	if update.Requests != 1 || reg.imported[1][0].AccountGUID != "reg-100-1" {
		t.Fatalf("update should carry the recorded guid: %+v", reg.imported[1][0])
	}

	if _, err := svc.PushAccount(context.Background(), "404", "create", ""); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPushAccountReportsRejections(t *testing.T) {
	reg := &fakeRegistry{house: testHouse(), accounts: []registry.AccountExportResult{testExport(2)}}
	reg.importReply = func(reqs []registry.ImportAccountRequestAccount) []registry.ImportResult {
		return []registry.ImportResult{{TransportGUID: reqs[0].TransportGUID, Error: &registry.ImportError{Code: "SRV001", Description: "rejected"}}}
	}
	svc, _ := newTestService(t, reg)
	if _, err := svc.PullHouse(context.Background(), 9, "fias-1"); err != nil {
		t.Fatalf("PullHouse: %v", err)
	}
	report, err := svc.PushAccount(context.Background(), "100-2", "create", "")
	if err != nil {
		t.Fatalf("PushAccount: %v", err)
	}
	if report.GUID != "" || len(report.Failures) != 1 || report.Failures[0].Error.Code != "SRV001" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestNewValidatesDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := New(Deps{Log: logger.Nop()}); err == nil {
		t.Fatalf("expected error without aggregate")
	}
}

func TestPullHouseLogsRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := &fakeRegistry{house: testHouse(), accounts: []registry.AccountExportResult{testExport(1)}}
	agg := aggregates.NewAccountAggregate(aggregates.AccountAggregateDeps{
		Base: aggregates.BaseDeps{DB: dbtestutil.SQLite(t), Log: logger.Nop()},
	})
	svc, err := New(Deps{Log: logger.NewWithCore(core), Accounts: agg, Registry: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := ctxutil.WithRunData(context.Background(), ctxutil.RunData{RunID: "run-42", Command: "pull"})
	if _, err := svc.PullHouse(ctx, 9, "fias-1"); err != nil {
		t.Fatalf("PullHouse: %v", err)
	}
	entries := logs.FilterMessage("House pulled").All()
	if len(entries) != 1 || entries[0].ContextMap()["run_id"] != "run-42" {
		t.Fatalf("expected run_id on summary line: %+v", entries)
	}
}
