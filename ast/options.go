package ast

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options holds the values of the `option` lines of a ledger. It is built
// once by the parser and is read-only afterwards: every accessor returns
// copies, so callers can never change what another reader sees.
//
// An option set more than once keeps every value in file order. Get returns
// the last one, which is what scalar options use; All returns the full list,
// which is what list options such as "operating_currency" use.
type Options struct {
	values map[string][]string
	lines  []*Option
}

// NewOptions builds Options from option lines in file order.
func NewOptions(lines ...*Option) *Options {
	var b OptionsBuilder
	for _, l := range lines {
		b.Add(l)
	}
	return b.Build()
}

// Get returns the last value set for name.
func (o *Options) Get(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	vs := o.values[name]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// GetOr returns the last value set for name, or fallback when unset.
func (o *Options) GetOr(name, fallback string) string {
	if v, ok := o.Get(name); ok {
		return v
	}
	return fallback
}

// All returns every value set for name, in file order.
func (o *Options) All(name string) []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.values[name])
}

// Keys returns the option names in sorted order.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	keys := maps.Keys(o.values)
	slices.Sort(keys)
	return keys
}

// Lines returns the option lines in file order.
func (o *Options) Lines() []Option {
	if o == nil {
		return nil
	}
	lines := make([]Option, len(o.lines))
	for i, l := range o.lines {
		lines[i] = *l
	}
	return lines
}

// Position returns where name was last set.
func (o *Options) Position(name string) (Position, bool) {
	if o == nil {
		return Position{}, false
	}
	for i := len(o.lines) - 1; i >= 0; i-- {
		if o.lines[i].Name == name {
			return o.lines[i].Pos, true
		}
	}
	return Position{}, false
}

// Len returns the number of option lines.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.lines)
}

// OptionsBuilder accumulates option lines. The zero value is ready to use.
type OptionsBuilder struct {
	lines []*Option
}

// Add records an option line.
func (b *OptionsBuilder) Add(opt *Option) {
	cp := *opt
	b.lines = append(b.lines, &cp)
}

// Build returns the immutable Options. The builder can keep being used; later
// additions do not affect options already built.
func (b *OptionsBuilder) Build() *Options {
	o := &Options{
		values: make(map[string][]string),
		lines:  make([]*Option, 0, len(b.lines)),
	}
	for _, l := range b.lines {
		cp := *l
		o.lines = append(o.lines, &cp)
		o.values[l.Name] = append(o.values[l.Name], l.Value)
	}
	return o
}
