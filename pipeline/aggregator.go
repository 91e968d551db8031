package pipeline

import (
	"go.uber.org/multierr"
)

// PassCount is the number of errors a source produced.
type PassCount struct {
	Source string
	Count  int
}

// Aggregator collects the errors of a run in emission order. It never
// deduplicates: the same finding reported by two passes is kept twice.
type Aggregator struct {
	errs   []error
	counts []PassCount
	index  map[string]int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Touch registers source so it shows up in Counts even without errors.
func (a *Aggregator) Touch(source string) {
	if _, ok := a.index[source]; ok {
		return
	}
	a.index[source] = len(a.counts)
	a.counts = append(a.counts, PassCount{Source: source})
}

// Add appends errs, attributed to source. Nil errors are skipped.
func (a *Aggregator) Add(source string, errs ...error) {
	a.Touch(source)
	i := a.index[source]
	for _, err := range errs {
		if err == nil {
			continue
		}
		a.errs = append(a.errs, err)
		a.counts[i].Count++
	}
}

// Len returns the total number of errors.
func (a *Aggregator) Len() int {
	return len(a.errs)
}

// Errors returns a copy of the errors in emission order.
func (a *Aggregator) Errors() []error {
	return append([]error(nil), a.errs...)
}

// Counts returns the per-source counts in the order sources were first seen.
func (a *Aggregator) Counts() []PassCount {
	return append([]PassCount(nil), a.counts...)
}

// CountOf returns how many errors source produced.
func (a *Aggregator) CountOf(source string) int {
	if i, ok := a.index[source]; ok {
		return a.counts[i].Count
	}
	return 0
}

// Err combines all errors into one, or returns nil when there are none.
// multierr.Errors recovers the list.
func (a *Aggregator) Err() error {
	return multierr.Combine(a.errs...)
}
