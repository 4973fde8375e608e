// Package metrics exposes the counters, meters and timers the interpreter
// records, backed by go-metrics registries.
package metrics

import (
	"sort"
	"strconv"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type (
	Registry = gometrics.Registry
	Counter  = gometrics.Counter
	Gauge    = gometrics.Gauge
	Meter    = gometrics.Meter
	Timer    = gometrics.Timer
)

// DefaultRegistry is the registry used when a nil registry is passed to
// any of the constructors below.
var DefaultRegistry = gometrics.DefaultRegistry

// NewRegistry creates an empty, standalone registry.
func NewRegistry() Registry {
	return gometrics.NewRegistry()
}

func orDefault(r Registry) Registry {
	if r == nil {
		return DefaultRegistry
	}
	return r
}

func getOrRegister[T any](name string, ctor func() T, r Registry) T {
	return orDefault(r).GetOrRegister(name, func() T { return ctor() }).(T)
}

// NewRegisteredCounter constructs and registers a new Counter, returning
// the existing one if the name is already taken.
func NewRegisteredCounter(name string, r Registry) Counter {
	return getOrRegister(name, gometrics.NewCounter, r)
}

func NewRegisteredGauge(name string, r Registry) Gauge {
	return getOrRegister(name, gometrics.NewGauge, r)
}

func NewRegisteredMeter(name string, r Registry) Meter {
	return getOrRegister(name, gometrics.NewMeter, r)
}

func NewRegisteredTimer(name string, r Registry) Timer {
	return getOrRegister(name, gometrics.NewTimer, r)
}

// Sample is a flattened, point-in-time reading of one registered metric.
type Sample struct {
	Name  string
	Kind  string
	Value string
}

// Collect reads every metric in the registry, sorted by name.
func Collect(r Registry) []Sample {
	var samples []Sample
	orDefault(r).Each(func(name string, i interface{}) {
		s := Sample{Name: name}
		switch m := i.(type) {
		case Counter:
			s.Kind, s.Value = "counter", itoa(m.Count())
		case Gauge:
			s.Kind, s.Value = "gauge", itoa(m.Value())
		case Meter:
			s.Kind, s.Value = "meter", itoa(m.Count())
		case Timer:
			ms := m.Snapshot()
			s.Kind = "timer"
			s.Value = itoa(ms.Count()) + " / mean " + time.Duration(int64(ms.Mean())).String()
		default:
			return
		}
		samples = append(samples, s)
	})
	samples = append(samples, labels(r)...)
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
