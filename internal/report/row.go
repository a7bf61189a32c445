package report

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Row is one preview or sample record with column order preserved.
type Row struct {
	m *orderedmap.OrderedMap[string, Text]
}

// NewRow builds a row from alternating column/value strings.
func NewRow(kv ...string) Row {
	om := orderedmap.New[string, Text]()
	for i := 0; i+1 < len(kv); i += 2 {
		om.Set(kv[i], Text(kv[i+1]))
	}
	return Row{m: om}
}

// Columns returns the column names in payload order.
func (r Row) Columns() []string {
	if r.m == nil {
		return nil
	}
	out := make([]string, 0, r.m.Len())
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Value returns the cell for column, or "".
func (r Row) Value(column string) string {
	if r.m == nil {
		return ""
	}
	v, _ := r.m.Get(column)
	return string(v)
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Row) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, Text]()
	if !isJSONObject(data) {
		r.m = om
		return nil
	}
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}
	r.m = om
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Row) UnmarshalYAML(node *yaml.Node) error {
	om := orderedmap.New[string, Text]()
	if node.Kind != yaml.MappingNode {
		r.m = om
		return nil
	}
	if err := om.UnmarshalYAML(node); err != nil {
		return err
	}
	r.m = om
	return nil
}

// Columns returns the union of columns across rows, first-seen order.
func Columns(rows []Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		for _, c := range row.Columns() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
