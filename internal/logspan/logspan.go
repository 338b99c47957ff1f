// Package logspan wraps zerolog with a small span abstraction mirroring
// the instrumented-block style original_source uses for its prover
// pipeline (tracing::info_span!/instrument around each major phase:
// commit, fold, query). By default it logs nowhere — callers opt in
// with SetOutput so library use never forces logging on a consumer.
package logspan

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

var base = zerolog.New(io.Discard).With().Timestamp().Logger()

// SetOutput redirects all subsequent spans to w, e.g. os.Stderr for a
// CLI or io.Discard (the default) for a library embedding.
func SetOutput(w io.Writer) {
	base = zerolog.New(w).With().Timestamp().Logger()
}

// Span is one named phase of work, with fields attached via With and
// closed via Done, logging its own wall-clock duration.
type Span struct {
	logger zerolog.Logger
	name   string
	start  time.Time
	fields map[string]any
}

// Start begins a new span named name.
func Start(name string) *Span {
	return &Span{logger: base, name: name, start: time.Now(), fields: map[string]any{}}
}

// With attaches a field to the span, returned for chaining.
func (s *Span) With(key string, value any) *Span {
	s.fields[key] = value
	return s
}

// Event logs a single point-in-time message within the span without
// closing it.
func (s *Span) Event(msg string) {
	ev := s.logger.Info().Str("span", s.name)
	for k, v := range s.fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Done closes the span, logging its elapsed duration.
func (s *Span) Done() {
	ev := s.logger.Info().Str("span", s.name).Dur("elapsed", time.Since(s.start))
	for k, v := range s.fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("done")
}

// Fail closes the span reporting an error instead of a clean finish.
func (s *Span) Fail(err error) {
	ev := s.logger.Error().Str("span", s.name).Dur("elapsed", time.Since(s.start)).Err(err)
	for k, v := range s.fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("failed")
}
