package alerting

import (
	"time"

	logger "go-wa-dispatch/src/infrastructure/logger"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// IReporter forwards unexpected failures to an external error tracker.
type IReporter interface {
	CaptureError(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type Config struct {
	DSN         string
	Environment string
	Release     string
}

// NewReporter returns a Sentry-backed reporter, or a no-op one when no DSN
// is configured.
func NewReporter(cfg Config, loggerInstance *logger.Logger) (IReporter, error) {
	if cfg.DSN == "" {
		loggerInstance.Info("Error reporting disabled: SENTRY_DSN not set")
		return NopReporter{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		loggerInstance.Error("Error initializing Sentry", zap.Error(err))
		return nil, err
	}
	loggerInstance.Info("Error reporting enabled", zap.String("environment", cfg.Environment))
	return &sentryReporter{hub: sentry.CurrentHub(), Logger: loggerInstance}, nil
}

type sentryReporter struct {
	hub    *sentry.Hub
	Logger *logger.Logger
}

func (r *sentryReporter) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if id := hub.CaptureException(err); id != nil {
			r.Logger.Debug("Error reported", zap.String("eventID", string(*id)))
		}
	})
}

func (r *sentryReporter) Flush(timeout time.Duration) {
	if !r.hub.Flush(timeout) {
		r.Logger.Warn("Timed out flushing error reports")
	}
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) CaptureError(error, map[string]string) {}

func (NopReporter) Flush(time.Duration) {}
