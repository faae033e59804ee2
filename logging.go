// logging.go - structured logging glue
//
// The teacher logs with bare fmt.Printf/fmt.Fprintf(os.Stderr, ...)
// throughout; this is the one deliberate ambient-stack deviation from
// "always prefer a pack library" (see DESIGN.md): the host-ABI boundary
// needs leveled, greppable logs more than the teacher's CLI tool did, so
// this reaches for the standard library's own modern answer, log/slog,
// rather than hand-rolling level filtering over fmt.

package main

import (
	"log/slog"
	"os"
)

// SlogLog adapts a *slog.Logger to the Log capability interface.
type SlogLog struct {
	logger *slog.Logger
}

// NewSlogLog returns a Log backed by a text slog.Logger writing to
// os.Stderr, leveled by level.
func NewSlogLog(level slog.Level) *SlogLog {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &SlogLog{logger: slog.New(h)}
}

func (l *SlogLog) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLog) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLog) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLog) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
