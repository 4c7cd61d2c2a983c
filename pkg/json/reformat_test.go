package json

import (
	"bytes"
	"strings"
	"testing"
)

func TestReformat(t *testing.T) {
	src := `{"b": [1, 2.50,3], "a":{"x":"y"}, "e": "…"}`
	tests := []struct {
		name   string
		pretty bool
		want   string
	}{
		{"compact", false, `{"b":[1,2.50,3],"a":{"x":"y"},"e":"…"}`},
		{"pretty", true, `{
  "b": [ 1, 2.50, 3 ],
  "a": {
    "x": "y"
  },
  "e": "…"
}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Reformat(&buf, []byte(src), tt.pretty); err != nil {
				t.Fatalf("Reformat() error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Reformat() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestReformatIdempotent(t *testing.T) {
	src := []byte(`[{"id":"a","deps":["b","c"]},{"id":"b","flags":[true,null,-1e3]}]`)
	var once, twice bytes.Buffer
	if err := Reformat(&once, src, true); err != nil {
		t.Fatal(err)
	}
	if err := Reformat(&twice, once.Bytes(), true); err != nil {
		t.Fatal(err)
	}
	if once.String() != twice.String() {
		t.Errorf("second pass changed output:\n%s\n---\n%s", once.String(), twice.String())
	}
}

func TestReformatErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing comma", `[1 2]`, "Json error: f.json:1:3: missing comma"},
		{"trailing content", `{}]`, "Json error: f.json:1:3: unexpected ']' after end of document"},
		{"bad value", `[1, @]`, "Json error: f.json:1:5: expected JSON value but got '@'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Reformat(&buf, []byte(tt.src), false, WithPath("f.json"))
			if err == nil || !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("Reformat() error = %v, want prefix %q", err, tt.want)
			}
		})
	}
}
