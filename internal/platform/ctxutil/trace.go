package ctxutil

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type runDataKey struct{}

// RunData identifies one CLI invocation across every log line it produces.
type RunData struct {
	RunID   string
	Command string
}

// WithRunData attaches rd to ctx, generating a RunID when rd has none.
func WithRunData(ctx context.Context, rd RunData) context.Context {
	if strings.TrimSpace(rd.RunID) == "" {
		rd.RunID = uuid.NewString()
	}
	return context.WithValue(ctx, runDataKey{}, &rd)
}

func GetRunData(ctx context.Context) *RunData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(runDataKey{}).(*RunData); ok {
		return rd
	}
	return nil
}

// RunID returns the run id carried by ctx, or "".
func RunID(ctx context.Context) string {
	if rd := GetRunData(ctx); rd != nil {
		return rd.RunID
	}
	return ""
}
