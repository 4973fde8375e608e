package log

import (
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// LoggerFilter decides, per call, whether a record is emitted.
type LoggerFilter interface {
	check() bool
}

// EveryN lets one record in N through. A nil or zero-valued EveryN lets
// everything through. It is safe for concurrent use.
type EveryN struct {
	N       uint32
	counter atomic.Uint32
}

// Every returns a filter emitting every n-th record.
func Every(n uint32) *EveryN {
	return &EveryN{N: n}
}

func (e *EveryN) check() bool {
	if e == nil || e.N == 0 {
		return true
	}
	return e.counter.Add(1)%e.N == 0
}

var _ LoggerFilter = &EveryN{}

type ifCondition struct {
	Condition bool
}

func (i *ifCondition) check() bool {
	return i == nil || i.Condition
}

var _ LoggerFilter = &ifCondition{}

func writeBy(filter LoggerFilter, level slog.Level, msg string, ctx []interface{}) {
	if filter != nil && !filter.check() {
		return
	}
	Root().Write(level, msg, ctx...)
}

func TraceBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, LevelTrace, msg, ctx)
}

func DebugBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelDebug, msg, ctx)
}

func InfoBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelInfo, msg, ctx)
}

func WarnBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelWarn, msg, ctx)
}

func ErrorBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	writeBy(filter, slog.LevelError, msg, ctx)
}

func TraceIf(condition bool, msg string, ctx ...interface{}) {
	TraceBy(&ifCondition{condition}, msg, ctx...)
}

func DebugIf(condition bool, msg string, ctx ...interface{}) {
	DebugBy(&ifCondition{condition}, msg, ctx...)
}

func InfoIf(condition bool, msg string, ctx ...interface{}) {
	InfoBy(&ifCondition{condition}, msg, ctx...)
}

func WarnIf(condition bool, msg string, ctx ...interface{}) {
	WarnBy(&ifCondition{condition}, msg, ctx...)
}

func ErrorIf(condition bool, msg string, ctx ...interface{}) {
	ErrorBy(&ifCondition{condition}, msg, ctx...)
}
