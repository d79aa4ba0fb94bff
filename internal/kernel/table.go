package kernel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Table maps a lattice offset (k, l) to its kernel weight. Rows are keyed by
// k, columns by l. A row may be present with no columns: compact mode emits
// an empty row for k = radius = 0 to match the reference generator.
type Table map[int]map[int]float64

// Ks returns the row keys in increasing order.
func (t Table) Ks() []int {
	ks := make([]int, 0, len(t))
	for k := range t {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

// Ls returns the column keys of row k in increasing order.
func (t Table) Ls(k int) []int {
	row, ok := t[k]
	if !ok {
		return nil
	}
	ls := make([]int, 0, len(row))
	for l := range row {
		ls = append(ls, l)
	}
	sort.Ints(ls)
	return ls
}

// Len returns the number of weights stored in the table. Empty rows count
// toward the key set but not toward Len.
func (t Table) Len() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// Weight returns the stored weight for offset (k, l).
func (t Table) Weight(k, l int) (float64, bool) {
	row, ok := t[k]
	if !ok {
		return 0, false
	}
	w, ok := row[l]
	return w, ok
}

// MarshalJSON encodes the table as an object of objects keyed by the decimal
// string form of k and l. Keys are written in increasing numeric order so the
// output is byte-stable across runs; consumers treat the order as
// insignificant. Weights are encoded at full round-trip precision.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.Ks() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(k))
		buf.WriteString(`":{`)
		for j, l := range t.Ls(k) {
			if j > 0 {
				buf.WriteByte(',')
			}
			leaf, err := json.Marshal(t[k][l])
			if err != nil {
				return nil, fmt.Errorf("encode weight (%d,%d): %w", k, l, err)
			}
			buf.WriteByte('"')
			buf.WriteString(strconv.Itoa(l))
			buf.WriteString(`":`)
			buf.Write(leaf)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object-of-objects form produced by MarshalJSON.
// Keys must be plain decimal integers; anything else is rejected rather than
// silently skipped.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Table, len(raw))
	for ks, row := range raw {
		k, err := parseOffsetKey(ks)
		if err != nil {
			return err
		}
		out[k] = make(map[int]float64, len(row))
		for ls, w := range row {
			l, err := parseOffsetKey(ls)
			if err != nil {
				return err
			}
			out[k][l] = w
		}
	}
	*t = out
	return nil
}

// parseOffsetKey converts a JSON object key back to a lattice offset. The
// round-trip is strict: "+1", "01" and "-0" did not come from MarshalJSON.
func parseOffsetKey(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset key %q: %w", s, err)
	}
	if s != strconv.Itoa(n) {
		return 0, fmt.Errorf("invalid offset key %q: not canonical", s)
	}
	return n, nil
}
