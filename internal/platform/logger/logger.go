package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger whose key/value pairs pass through a redaction policy.
// Secrets are replaced, payer identifiers are replaced by a short salted hash.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	policy        *redaction
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), policy: redactionFromEnv()}, nil
}

// NewWithCore builds a Logger on an existing core. Tests pair it with zaptest/observer.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar(), policy: redactionFromEnv()}
}

func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), policy: &redaction{}}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.policy.apply(kv)...)
}
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.policy.apply(kv)...)
}
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.policy.apply(kv)...)
}
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.policy.apply(kv)...)
}
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.policy.apply(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.policy.apply(kv)...), policy: l.policy}
}

var (
	secretKeyParts = []string{"token", "authorization", "password", "secret", "api_key", "apikey"}
	// Payer identifiers stay correlatable across lines without being readable.
	personalKeyParts = []string{"snils", "inn", "document_number", "payer_name"}
)

type redaction struct {
	enabled bool
	salt    string
}

// redactionFromEnv reads LOG_REDACTION_ENABLED (default on) and LOG_HASH_SALT.
func redactionFromEnv() *redaction {
	r := &redaction{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
}

func (r *redaction) apply(kv []interface{}) []interface{} {
	if r == nil || !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(keyOf(out[i]), out[i+1])
	}
	return out
}

func (r *redaction) value(key string, v interface{}) interface{} {
	switch {
	case key == "":
		return v
	case containsAny(key, secretKeyParts):
		return "[REDACTED]"
	case containsAny(key, personalKeyParts):
		return r.hash(v)
	}
	if m, ok := v.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, mv := range m {
			out[k] = r.value(keyOf(k), mv)
		}
		return out
	}
	return v
}

func (r *redaction) hash(v interface{}) string {
	raw := stringOf(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func keyOf(k interface{}) string {
	return strings.ToLower(stringOf(k))
}

func containsAny(key string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
