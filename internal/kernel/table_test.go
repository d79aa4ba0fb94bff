package kernel

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTableMarshalJSON(t *testing.T) {
	table := Table{
		-1: {0: 0.5, -2: 0.25},
		0:  {},
		10: {3: 1},
	}

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Keys are decimal strings in increasing numeric order, so the encoding
	// is byte-stable across runs.
	want := `{"-1":{"-2":0.25,"0":0.5},"0":{},"10":{"3":1}}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestTableRoundTrip(t *testing.T) {
	p := testParams()
	g0 := ComputeG0(p)

	for _, compact := range []bool{false, true} {
		table, err := Build(3, compact, p, g0)
		if err != nil {
			t.Fatalf("build: %v", err)
		}

		data, err := json.Marshal(table)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var back Table
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if diff := cmp.Diff(table, back); diff != "" {
			t.Errorf("round trip mismatch (compact=%v) (-want +got):\n%s", compact, diff)
		}
	}
}

func TestTableUnmarshalRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"plus sign", `{"+1":{}}`},
		{"leading zero", `{"01":{}}`},
		{"negative zero", `{"-0":{}}`},
		{"not a number", `{"a":{}}`},
		{"bad inner key", `{"1":{"0x2":0.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var table Table
			if err := json.Unmarshal([]byte(tt.data), &table); err == nil {
				t.Errorf("unmarshal accepted %s", tt.data)
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	table := Table{
		-2: {1: 0.1, -1: 0.2},
		0:  {},
		3:  {5: 0.3},
	}

	if got, want := table.Ks(), []int{-2, 0, 3}; !cmp.Equal(got, want) {
		t.Errorf("Ks() = %v, want %v", got, want)
	}
	if got, want := table.Ls(-2), []int{-1, 1}; !cmp.Equal(got, want) {
		t.Errorf("Ls(-2) = %v, want %v", got, want)
	}
	if got := table.Ls(7); got != nil {
		t.Errorf("Ls(7) = %v, want nil", got)
	}
	if got := table.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if _, ok := table.Weight(0, 0); ok {
		t.Error("Weight(0,0) reported a value for an empty row")
	}
	if w, ok := table.Weight(3, 5); !ok || w != 0.3 {
		t.Errorf("Weight(3,5) = %v, %v", w, ok)
	}
}
