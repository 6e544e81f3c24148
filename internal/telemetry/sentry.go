// Package telemetry provides privacy-compliant error tracking
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/regionedit/internal/conf"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
)

// ReportedCategories are the error categories forwarded to Sentry. Rejected
// user input is expected and never reported.
var ReportedCategories = []errors.ErrorCategory{
	errors.CategoryDataIntegrity,
	errors.CategoryConfiguration,
}

var (
	initMu      sync.Mutex
	initialized bool
)

// GetLogger returns the telemetry package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}

type options struct {
	transport   sentry.Transport
	environment string
}

// Option configures Init.
type Option func(*options)

// WithTransport replaces the HTTP transport, used by tests.
func WithTransport(t sentry.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithEnvironment sets the Sentry environment tag.
func WithEnvironment(env string) Option {
	return func(o *options) {
		o.environment = env
	}
}

// Init configures the Sentry SDK and registers the error reporter. It
// returns false without touching the SDK when telemetry is disabled.
func Init(settings conf.TelemetrySettings, release string, opts ...Option) (bool, error) {
	if !settings.Enabled {
		return false, nil
	}

	o := options{environment: "production"}
	for _, opt := range opts {
		opt(&o)
	}

	initMu.Lock()
	defer initMu.Unlock()

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Transport:        o.transport,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      o.environment,
		ServerName:       "", // explicitly clear to prevent hostname leakage
		Release:          fmt.Sprintf("regionedit@%s", release),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return false, errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true, ReportedCategories...))
	initialized = true

	GetLogger().Info("error telemetry enabled", logger.String("release", release))
	return true, nil
}

// Flush waits up to timeout for queued events and detaches the reporter.
func Flush(timeout time.Duration) bool {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return true
	}
	errors.SetTelemetryReporter(nil)
	initialized = false
	return sentry.Flush(timeout)
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
