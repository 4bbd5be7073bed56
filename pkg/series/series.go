// Package series holds per-topic log timestamps collected in one pass over a
// file. A Topics value is immutable once built.
package series

import "slices"

// Topics maps topic names to their timestamps in file order. Topics iterate
// in order of first appearance.
type Topics struct {
	order []string
	ts    map[string][]uint64
}

// Builder accumulates timestamps for a Topics value.
type Builder struct {
	order []string
	ts    map[string][]uint64
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{ts: map[string][]uint64{}}
}

// Add appends ts to topic.
func (b *Builder) Add(topic string, ts uint64) {
	if _, ok := b.ts[topic]; !ok {
		b.order = append(b.order, topic)
	}

	b.ts[topic] = append(b.ts[topic], ts)
}

// Build freezes the builder. The builder must not be used afterwards.
func (b *Builder) Build() Topics {
	t := Topics{order: b.order, ts: b.ts}
	b.order, b.ts = nil, nil

	return t
}

// Empty reports whether no timestamps were collected.
func (t Topics) Empty() bool { return len(t.order) == 0 }

// Names returns the topic names in first-appearance order.
func (t Topics) Names() []string { return slices.Clone(t.order) }

// Timestamps returns the timestamps of topic in file order. The result is
// shared and must not be modified.
func (t Topics) Timestamps(topic string) []uint64 {
	return slices.Clip(t.ts[topic])
}

// Each calls fn for every topic in first-appearance order.
func (t Topics) Each(fn func(topic string, ts []uint64)) {
	for _, name := range t.order {
		fn(name, slices.Clip(t.ts[name]))
	}
}

// Pool returns the sorted union of timestamps of every topic accepted by
// match. The result is a fresh slice.
func (t Topics) Pool(match func(topic string) bool) []uint64 {
	var out []uint64

	for _, name := range t.order {
		if match(name) {
			out = append(out, t.ts[name]...)
		}
	}

	slices.Sort(out)

	return out
}
