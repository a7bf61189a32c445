package report

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Count is a lenient numeric value. Anything that does not coerce to a finite
// number decodes as zero.
type Count float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = 0
		return nil
	}
	*c = toCount(raw)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Count) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		*c = 0
		return nil
	}
	*c = toCount(raw)
	return nil
}

// Float returns the count as float64.
func (c Count) Float() float64 { return float64(c) }

func toCount(raw any) Count {
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Count(v)
}

// Text is a label that tolerates numbers and booleans in the payload.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Text(cast.ToString(raw))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = Text(cast.ToString(raw))
	return nil
}

// Pair is one label/value entry of a Counts mapping.
type Pair struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Counts is a label -> count mapping that keeps first-seen insertion order.
// The zero value and a nil *Counts are both empty.
type Counts struct {
	m *orderedmap.OrderedMap[string, Count]
}

// NewCounts builds Counts from pairs in the given order. Later duplicates
// overwrite the value but keep the original position.
func NewCounts(pairs ...Pair) *Counts {
	om := orderedmap.New[string, Count]()
	for _, p := range pairs {
		om.Set(p.Label, Count(p.Value))
	}
	return &Counts{m: om}
}

// Len reports the number of labels.
func (c *Counts) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Empty reports whether the mapping is absent or has no labels.
func (c *Counts) Empty() bool { return c.Len() == 0 }

// Get returns the value stored for label.
func (c *Counts) Get(label string) (float64, bool) {
	if c == nil || c.m == nil {
		return 0, false
	}
	v, ok := c.m.Get(label)
	return float64(v), ok
}

// Pairs returns a fresh slice of entries in insertion order.
func (c *Counts) Pairs() []Pair {
	if c.Len() == 0 {
		return nil
	}
	out := make([]Pair, 0, c.m.Len())
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Pair{Label: p.Key, Value: float64(p.Value)})
	}
	return out
}

// Labels returns the labels in insertion order.
func (c *Counts) Labels() []string {
	pairs := c.Pairs()
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Label
	}
	return out
}

// Values returns the values in insertion order.
func (c *Counts) Values() []float64 {
	pairs := c.Pairs()
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = p.Value
	}
	return out
}

// Relabel returns a copy where label from is renamed to to, keeping position.
// When to already exists the values are summed at the first position.
func (c *Counts) Relabel(from, to string) *Counts {
	if c.Len() == 0 {
		return c
	}
	if _, ok := c.Get(from); !ok {
		return c
	}
	om := orderedmap.New[string, Count]()
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		key := p.Key
		if key == from {
			key = to
		}
		if prev, ok := om.Get(key); ok {
			om.Set(key, prev+p.Value)
			continue
		}
		om.Set(key, p.Value)
	}
	return &Counts{m: om}
}

// MarshalJSON implements json.Marshaler, preserving order.
func (c *Counts) MarshalJSON() ([]byte, error) {
	if c == nil || c.m == nil {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Payloads that are not objects
// decode as an empty mapping.
func (c *Counts) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, Count]()
	if !isJSONObject(data) {
		c.m = om
		return nil
	}
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}
	c.m = om
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Non-mapping nodes decode as an
// empty mapping.
func (c *Counts) UnmarshalYAML(node *yaml.Node) error {
	om := orderedmap.New[string, Count]()
	if node.Kind != yaml.MappingNode {
		c.m = om
		return nil
	}
	if err := om.UnmarshalYAML(node); err != nil {
		return err
	}
	c.m = om
	return nil
}

// WeekCounts maps a week label to its per-module Counts.
type WeekCounts struct {
	m *orderedmap.OrderedMap[string, *Counts]
}

// NewWeekCounts builds a WeekCounts from the given weeks, in order.
func NewWeekCounts(weeks []string, counts []*Counts) *WeekCounts {
	om := orderedmap.New[string, *Counts]()
	for i, w := range weeks {
		if i < len(counts) {
			om.Set(w, counts[i])
		}
	}
	return &WeekCounts{m: om}
}

// Week returns the breakdown for week. ok is false when the week has no
// entry or its entry is null.
func (w *WeekCounts) Week(week string) (*Counts, bool) {
	if w == nil || w.m == nil {
		return nil, false
	}
	c, ok := w.m.Get(week)
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

// Weeks returns the week labels in insertion order.
func (w *WeekCounts) Weeks() []string {
	if w == nil || w.m == nil {
		return nil
	}
	out := make([]string, 0, w.m.Len())
	for p := w.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (w *WeekCounts) MarshalJSON() ([]byte, error) {
	if w == nil || w.m == nil {
		return []byte("{}"), nil
	}
	return w.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *WeekCounts) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, *Counts]()
	if !isJSONObject(data) {
		w.m = om
		return nil
	}
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}
	w.m = om
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *WeekCounts) UnmarshalYAML(node *yaml.Node) error {
	om := orderedmap.New[string, *Counts]()
	if node.Kind != yaml.MappingNode {
		w.m = om
		return nil
	}
	if err := om.UnmarshalYAML(node); err != nil {
		return err
	}
	w.m = om
	return nil
}

func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
