package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/accountsync/internal/pkg/httpx"
	"github.com/yungbote/accountsync/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *client {
	t.Helper()
	return newBatchClient(t, srv, retries, 0)
}

func newBatchClient(t *testing.T, srv *httptest.Server, retries, batch int) *client {
	t.Helper()
	c, err := NewClient(logger.Nop(), Config{BaseURL: srv.URL + "/", APIKey: "k", MaxRetries: retries, BatchSize: batch})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	impl := c.(*client)
	impl.backoff = httpx.Backoff{Base: time.Millisecond}
	return impl
}

func TestExportAccountsDecodesPresenceFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/houses/fias-1/accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing auth header")
		}
		_, _ = w.Write([]byte(`{"accounts":[{"accountNumber":"0001-01","accountGuid":"g1",
			"totalSquare":"0","totalSquareSpecified":true,"heatedArea":"0","heatedAreaSpecified":false,
			"accountType":"isUOAccount","accommodation":[{"kind":"PremisesGUID","guid":"p1"}]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	got, err := c.ExportAccounts(context.Background(), "fias-1")
	if err != nil {
		t.Fatalf("ExportAccounts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 account, got %d", len(got))
	}
	acc := got[0]
	if total := OptionalDecimal(acc.TotalSquare, acc.TotalSquareSpecified); total == nil || !total.IsZero() {
		t.Fatalf("specified zero total square lost: %v", total)
	}
	if heated := OptionalDecimal(acc.HeatedArea, acc.HeatedAreaSpecified); heated != nil {
		t.Fatalf("unspecified heated area must be nil, got %v", heated)
	}
	if len(acc.Accommodation) != 1 || acc.Accommodation[0].Kind != AccommodationPremises {
		t.Fatalf("unexpected accommodation %+v", acc.Accommodation)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(HouseExportResult{FIASHouseGUID: "fias-1"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	house, err := c.ExportHouse(context.Background(), "fias-1")
	if err != nil {
		t.Fatalf("ExportHouse: %v", err)
	}
	if house.FIASHouseGUID != "fias-1" {
		t.Fatalf("unexpected house %+v", house)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad account"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)
	_, err := c.ImportAccounts(context.Background(), []ImportAccountRequestAccount{{AccountNumber: "1"}})
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest || se.Body != "bad account" {
		t.Fatalf("expected 400 status error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestImportAccountsEmptyIsNoop(t *testing.T) {
	c, err := NewClient(logger.Nop(), Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.ImportAccounts(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	for _, raw := range []string{"", "registry.local", "://bad"} {
		if _, err := NewClient(logger.Nop(), Config{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestImportAccountsBatches(t *testing.T) {
	var mu sync.Mutex
	var sizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts:import" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Accounts []ImportAccountRequestAccount `json:"accounts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		sizes = append(sizes, len(body.Accounts))
		mu.Unlock()
		results := make([]ImportResult, 0, len(body.Accounts))
		for _, a := range body.Accounts {
			results = append(results, ImportResult{TransportGUID: a.TransportGUID, GUID: "g-" + a.TransportGUID})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	reqs := make([]ImportAccountRequestAccount, 5)
	for i := range reqs {
		reqs[i] = ImportAccountRequestAccount{AccountNumber: "0001", TransportGUID: string(rune('a' + i))}
	}
	c := newBatchClient(t, srv, 0, 2)
	got, err := c.ImportAccounts(context.Background(), reqs)
	if err != nil {
		t.Fatalf("ImportAccounts: %v", err)
	}
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("unexpected batch sizes %v", sizes)
	}
	if len(got) != 5 || got[0].TransportGUID != "a" || got[4].GUID != "g-e" {
		t.Fatalf("results not in request order: %+v", got)
	}
}

func TestRetriesKeepRequestID(t *testing.T) {
	var mu sync.Mutex
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		n := len(ids)
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"accounts":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)
	if _, err := c.ExportAccounts(context.Background(), "fias-1"); err != nil {
		t.Fatalf("ExportAccounts: %v", err)
	}
	if len(ids) != 3 || ids[0] == "" || ids[0] != ids[1] || ids[1] != ids[2] {
		t.Fatalf("request id not stable across attempts: %v", ids)
	}
}

func TestRetriesStopOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 5)
	c.backoff = httpx.Backoff{Base: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ExportHouse(ctx, "fias-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}
