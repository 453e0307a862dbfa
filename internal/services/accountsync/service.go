package accountsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/accountsync/internal/data/housecache"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/ctxutil"
	"github.com/yungbote/accountsync/internal/platform/logger"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

const defaultConcurrency = 4

type Deps struct {
	Log         *logger.Logger
	Accounts    domainagg.AccountAggregate
	Registry    registry.Client
	Houses      housecache.Cache
	Concurrency int
}

// Service moves accounts between the store and the registry.
type Service struct {
	log         *logger.Logger
	accounts    domainagg.AccountAggregate
	registry    registry.Client
	houses      housecache.Cache
	concurrency int
	tracer      trace.Tracer
}

func New(deps Deps) (*Service, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("account aggregate required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry client required")
	}
	if deps.Houses == nil {
		houses, err := housecache.New(deps.Log, nil, deps.Registry, housecache.Config{})
		if err != nil {
			return nil, err
		}
		deps.Houses = houses
	}
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		log:         deps.Log.With("service", "AccountSync"),
		accounts:    deps.Accounts,
		registry:    deps.Registry,
		houses:      deps.Houses,
		concurrency: concurrency,
		tracer:      otel.Tracer("github.com/yungbote/accountsync/internal/services/accountsync"),
	}, nil
}

type PullFailure struct {
	AccountNumber string
	Err           error
}

type PullReport struct {
	HouseID    int64
	FIASGUID   string
	Accounts   int
	Created    int
	Updated    int
	Unresolved int
	Failures   []PullFailure
}

// PullHouse applies every registry account of one building to the store.
// Each account runs in its own transaction; a failed account is reported and
// does not stop the others.
func (s *Service) PullHouse(ctx context.Context, houseID int64, fiasHouseGUID string) (PullReport, error) {
	fias := strings.TrimSpace(fiasHouseGUID)
	report := PullReport{HouseID: houseID, FIASGUID: fias}
	if fias == "" {
		return report, domainagg.NewError(domainagg.CodeValidation, "AccountSync.PullHouse", "missing fias house guid", nil)
	}
	ctx, span := s.tracer.Start(ctx, "AccountSync.PullHouse", trace.WithAttributes(
		attribute.Int64("house_id", houseID),
		attribute.String("fias_house_guid", fias),
	))
	defer span.End()

	log := s.runLog(ctx)

	house, err := s.houses.Get(ctx, fias)
	if err != nil {
		return report, endSpan(span, fmt.Errorf("load house %s: %w", fias, err))
	}
	exports, err := s.registry.ExportAccounts(ctx, fias)
	if err != nil {
		return report, endSpan(span, fmt.Errorf("export accounts %s: %w", fias, err))
	}
	report.Accounts = len(exports)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range exports {
		export := &exports[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.accounts.ApplyExport(gctx, domainagg.ApplyExportInput{
				HouseID: houseID,
				Export:  export,
				House:   house,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || gctx.Err() != nil {
					return err
				}
				report.Failures = append(report.Failures, PullFailure{AccountNumber: export.AccountNumber, Err: err})
				log.Warn("Account pull failed",
					"account_number", export.AccountNumber,
					"code", string(domainagg.CodeOf(err)),
					"error", err,
				)
				return nil
			}
			if res.Created {
				report.Created++
			} else {
				report.Updated++
			}
			report.Unresolved += len(res.Unresolved)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, endSpan(span, err)
	}

	span.SetAttributes(
		attribute.Int("accounts", report.Accounts),
		attribute.Int("failures", len(report.Failures)),
		attribute.Int("unresolved", report.Unresolved),
	)
	log.Info("House pulled",
		"house_id", houseID,
		"fias_house_guid", fias,
		"accounts", report.Accounts,
		"created", report.Created,
		"updated", report.Updated,
		"unresolved", report.Unresolved,
		"failures", len(report.Failures),
		"trace_id", traceID(span),
	)
	return report, nil
}

type PushReport struct {
	AccountNumber string
	Requests      int
	GUID          string
	Failures      []registry.ImportResult
}

// PushAccount sends the stored account to the registry and records the GUID
// the registry assigns. fiasHouseGUID may be empty when every premise and
// room already carries its registry GUID.
func (s *Service) PushAccount(ctx context.Context, number, mode, fiasHouseGUID string) (PushReport, error) {
	number = strings.TrimSpace(number)
	report := PushReport{AccountNumber: number}
	ctx, span := s.tracer.Start(ctx, "AccountSync.PushAccount", trace.WithAttributes(
		attribute.String("account_number", number),
		attribute.String("mode", mode),
	))
	defer span.End()
	log := s.runLog(ctx)

	var house *registry.HouseExportResult
	if fias := strings.TrimSpace(fiasHouseGUID); fias != "" {
		h, err := s.houses.Get(ctx, fias)
		if err != nil {
			return report, endSpan(span, fmt.Errorf("load house %s: %w", fias, err))
		}
		house = h
	}

	built, err := s.accounts.BuildImport(ctx, domainagg.BuildImportInput{
		AccountNumber: number,
		Mode:          mode,
		House:         house,
	})
	if err != nil {
		return report, endSpan(span, err)
	}
	report.Requests = len(built.Requests)
	if report.Requests == 0 {
		log.Info("Account has no payers; nothing to push", "account_number", number)
		return report, nil
	}

	results, err := s.registry.ImportAccounts(ctx, built.Requests)
	if err != nil {
		return report, endSpan(span, fmt.Errorf("import account %s: %w", number, err))
	}
	recorded, err := s.accounts.RecordImportResults(ctx, domainagg.RecordImportInput{
		AccountNumber: number,
		Results:       results,
	})
	if err != nil {
		return report, endSpan(span, err)
	}
	report.GUID = recorded.GUID
	report.Failures = recorded.Failures
	for _, f := range recorded.Failures {
		log.Warn("Registry rejected import request",
			"account_number", number,
			"transport_guid", f.TransportGUID,
			"error_code", f.Error.Code,
			"error_description", f.Error.Description,
		)
	}
	span.SetAttributes(attribute.Int("requests", report.Requests), attribute.Int("failures", len(report.Failures)))
	log.Info("Account pushed",
		"account_number", number,
		"requests", report.Requests,
		"registry_guid", report.GUID,
		"failures", len(report.Failures),
		"trace_id", traceID(span),
	)
	return report, nil
}

func (s *Service) runLog(ctx context.Context) *logger.Logger {
	if id := ctxutil.RunID(ctx); id != "" {
		return s.log.With("run_id", id)
	}
	return s.log
}

func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func traceID(span trace.Span) string {
	if sc := span.SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
