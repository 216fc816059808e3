package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init enables error reporting. An empty DSN leaves reporting disabled and
// returns false.
func Init(dsn, env, release string, tracesSampleRate float64) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
		EnableTracing:    tracesSampleRate > 0,
		TracesSampleRate: tracesSampleRate,
	})
	if err != nil {
		return false, fmt.Errorf("init sentry failed: %w", err)
	}
	return true, nil
}

func Flush() {
	sentry.Flush(2 * time.Second)
}
