package observability

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level classifies a user-facing message.
type Level string

const (
	LevelWarn  Level = "warning"
	LevelError Level = "error"
)

// Reporter is the channel through which boundary components tell the user
// that something went wrong without failing the operation.
type Reporter interface {
	Warn(msg string)
	Error(msg string)
}

// LogReporter reports to a logger. It is what the CLI uses.
type LogReporter struct {
	Log logrus.FieldLogger
}

// Warn implements Reporter.
func (r LogReporter) Warn(msg string) { r.Log.Warn(msg) }

// Error implements Reporter.
func (r LogReporter) Error(msg string) { r.Log.Error(msg) }

// Message is one collected report.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Collector gathers reports for a single request so they can be shown on the page.
type Collector struct {
	mu       sync.Mutex
	messages []Message
}

// Warn implements Reporter.
func (c *Collector) Warn(msg string) { c.add(LevelWarn, msg) }

// Error implements Reporter.
func (c *Collector) Error(msg string) { c.add(LevelError, msg) }

func (c *Collector) add(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Level: level, Text: msg})
}

// Messages returns a copy of everything collected so far.
func (c *Collector) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

type reporterKey struct{}

// WithReporter attaches a request-scoped Reporter to ctx.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// ReporterFrom returns the Reporter attached to ctx, or fallback if there is none.
func ReporterFrom(ctx context.Context, fallback Reporter) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}
	return fallback
}
