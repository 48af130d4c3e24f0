package changestreamcore

import "go.uber.org/zap"

// RecordCountScope controls how number_of_records_in_transaction is
// computed, defaulting to transaction-wide.
type RecordCountScope int

const (
	// RecordCountScopeTransaction sums records across every change stream
	// touched by the transaction. This is the default.
	RecordCountScopeTransaction RecordCountScope = iota
	// RecordCountScopePerStream counts only the records emitted to the
	// same stream as the one being finalized.
	RecordCountScopePerStream
)

// config holds orchestrator-wide settings behind a single functional-options
// surface.
type config struct {
	logger           *zap.Logger
	recordCountScope RecordCountScope
	observer         RecordObserver
}

// Option configures Pipeline via functional options.
type Option interface {
	apply(*config)
}

type withLogger struct{ logger *zap.Logger }

func (o withLogger) apply(c *config) { c.logger = o.logger }

// WithLogger sets the *zap.Logger the orchestrator logs through.
//
// Default is zap.NewNop(): silent unless a logger is supplied.
func WithLogger(logger *zap.Logger) Option {
	return withLogger{logger: logger}
}

type withRecordCountScope RecordCountScope

func (o withRecordCountScope) apply(c *config) { c.recordCountScope = RecordCountScope(o) }

// WithRecordCountScope sets how number_of_records_in_transaction is
// computed. Default is RecordCountScopeTransaction.
func WithRecordCountScope(scope RecordCountScope) Option {
	return withRecordCountScope(scope)
}

type withObserver struct{ observer RecordObserver }

func (o withObserver) apply(c *config) { c.observer = o.observer }

// WithRecordObserver registers an observer notified as each
// DataChangeRecord is finalized by BuildMutation, in the same order those
// records are appended to the returned WriteOps.
//
// Default is no observer.
func WithRecordObserver(observer RecordObserver) Option {
	return withObserver{observer: observer}
}

func newConfig(options ...Option) *config {
	c := &config{
		logger:           zap.NewNop(),
		recordCountScope: RecordCountScopeTransaction,
	}
	for _, o := range options {
		o.apply(c)
	}
	return c
}
