package metrics

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// LabelValue is a mapping of keys to values
type LabelValue map[string]any

// LabelSnapshot is a read-only copy of a Label.
type LabelSnapshot LabelValue

// Value returns the value at the time the snapshot was taken.
func (l LabelSnapshot) Value() LabelValue { return LabelValue(l) }

// Label holds descriptive, non-numeric metadata such as the active
// interpreter configuration.
type Label struct {
	value LabelValue

	mutex sync.Mutex
}

// go-metrics registries only retain their own metric kinds, so labels are
// tracked alongside them.
var (
	labelsMu   sync.Mutex
	labelIndex = make(map[Registry]map[string]*Label)
)

// GetOrRegisterLabel returns an existing Label or constructs and registers a
// new Label.
func GetOrRegisterLabel(name string, r Registry) *Label {
	r = orDefault(r)
	labelsMu.Lock()
	defer labelsMu.Unlock()

	byName, ok := labelIndex[r]
	if !ok {
		byName = make(map[string]*Label)
		labelIndex[r] = byName
	}
	if l, ok := byName[name]; ok {
		return l
	}
	l := NewLabel()
	byName[name] = l
	return l
}

func labels(r Registry) []Sample {
	r = orDefault(r)
	labelsMu.Lock()
	defer labelsMu.Unlock()

	var samples []Sample
	for name, l := range labelIndex[r] {
		snap := l.Snapshot().Value()
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, snap[k])
		}
		samples = append(samples, Sample{Name: name, Kind: "label", Value: strings.Join(parts, " ")})
	}
	return samples
}

// NewLabel constructs a new Label.
func NewLabel() *Label {
	return &Label{value: make(map[string]any)}
}

// Snapshot returns a copy of the current label values.
func (l *Label) Snapshot() *LabelSnapshot {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	snapshot := LabelSnapshot(maps.Clone(l.value))
	return &snapshot
}

// Mark records the label.
func (l *Label) Mark(value map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	maps.Copy(l.value, value)
}
