package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/accountsync/internal/pkg/httpx"
	"github.com/yungbote/accountsync/internal/platform/logger"
)

// Client is the transport to the external account registry.
type Client interface {
	ExportHouse(ctx context.Context, fiasHouseGUID string) (*HouseExportResult, error)
	ExportAccounts(ctx context.Context, fiasHouseGUID string) ([]AccountExportResult, error)
	ImportAccounts(ctx context.Context, accounts []ImportAccountRequestAccount) ([]ImportResult, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// BatchSize caps accounts per import call. The registry rejects larger batches.
	BatchSize int
}

const (
	defaultBatchSize = 100
	maxErrorBody     = 512
)

type client struct {
	log        *logger.Logger
	base       *url.URL
	apiKey     string
	http       *http.Client
	maxRetries int
	batchSize  int
	backoff    httpx.Backoff
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("missing registry base url")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid registry base url %q", raw)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &client{
		log:        log.With("client", "RegistryClient", "registry_host", base.Host),
		base:       base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		http:       &http.Client{Timeout: timeout},
		maxRetries: max(cfg.MaxRetries, 0),
		batchSize:  batch,
		backoff:    httpx.Backoff{Base: time.Second, Max: 10 * time.Second, Jitter: 0.2},
	}, nil
}

func (c *client) ExportHouse(ctx context.Context, fiasHouseGUID string) (*HouseExportResult, error) {
	fias := strings.TrimSpace(fiasHouseGUID)
	if fias == "" {
		return nil, fmt.Errorf("missing fias house guid")
	}
	var out HouseExportResult
	if err := c.call(ctx, http.MethodGet, "v1/houses/"+url.PathEscape(fias), nil, &out); err != nil {
		return nil, fmt.Errorf("export house %s: %w", fias, err)
	}
	return &out, nil
}

func (c *client) ExportAccounts(ctx context.Context, fiasHouseGUID string) ([]AccountExportResult, error) {
	fias := strings.TrimSpace(fiasHouseGUID)
	if fias == "" {
		return nil, fmt.Errorf("missing fias house guid")
	}
	var out struct {
		Accounts []AccountExportResult `json:"accounts"`
	}
	if err := c.call(ctx, http.MethodGet, "v1/houses/"+url.PathEscape(fias)+"/accounts", nil, &out); err != nil {
		return nil, fmt.Errorf("export accounts %s: %w", fias, err)
	}
	return out.Accounts, nil
}

// ImportAccounts sends requests in batches of at most BatchSize and returns the results of
// all batches in request order. A failed batch stops the run; earlier results are returned.
func (c *client) ImportAccounts(ctx context.Context, accounts []ImportAccountRequestAccount) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(accounts))
	for start := 0; start < len(accounts); start += c.batchSize {
		end := min(start+c.batchSize, len(accounts))
		var out struct {
			Results []ImportResult `json:"results"`
		}
		body := struct {
			Accounts []ImportAccountRequestAccount `json:"accounts"`
		}{Accounts: accounts[start:end]}
		if err := c.call(ctx, http.MethodPost, "v1/accounts:import", body, &out); err != nil {
			return results, fmt.Errorf("import accounts [%d:%d]: %w", start, end, err)
		}
		results = append(results, out.Results...)
	}
	return results, nil
}

// call performs one logical request with retries. Every attempt shares a request id.
func (c *client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}
	requestID := uuid.NewString()
	target := c.base.JoinPath(path).String()

	for attempt := 0; ; attempt++ {
		resp, raw, err := c.attempt(ctx, method, target, requestID, payload)
		if err == nil {
			if out == nil || len(raw) == 0 {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		if attempt >= c.maxRetries || !httpx.IsRetryableError(err) {
			return err
		}
		wait := c.backoff.Delay(attempt, resp)
		c.log.Warn("Registry request retrying",
			"path", path,
			"request_id", requestID,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"wait", wait.String(),
			"error", err.Error(),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *client) attempt(ctx context.Context, method, target, requestID string, payload []byte) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return resp, raw, &httpx.StatusError{Code: resp.StatusCode, Body: msg}
	}
	return resp, raw, nil
}
