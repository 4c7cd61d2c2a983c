package typed

import (
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
)

func object(t *testing.T, src string) *json.Object {
	t.Helper()
	obj, err := json.NewReader([]byte(src), json.WithPath("t.json")).GetObject()
	if err != nil {
		t.Fatalf("GetObject() error: %v", err)
	}
	return obj
}

func TestCollectionMerge(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wasLoaded bool
		want      []string
	}{
		{"patch", `{"extend":{"f":["c"]},"delete":{"f":["a"]}}`, true, []string{"b", "c"}},
		{"replace wins", `{"f":["x","y"],"extend":{"f":["c"]},"delete":{"f":["b"]}}`, true, []string{"x", "y"}},
		{"bare value", `{"extend":{"f":"c"}}`, true, []string{"a", "b", "c"}},
		{"unrelated directive", `{"extend":{"g":["c"]}}`, true, []string{"a", "b"}},
		{"fresh replace", `{"f":"z"}`, false, []string{"z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet("a", "b")
			if err := Optional(object(t, tt.src), tt.wasLoaded, "f", Collection[string](s, String)); err != nil {
				t.Fatalf("Optional() error: %v", err)
			}
			if got := Sorted(s); !slices.Equal(got, tt.want) {
				t.Errorf("set = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectionFreshWithoutMember(t *testing.T) {
	s := NewSet("a")
	ok, err := Collection[string](s, String).Load(object(t, `{"extend":{"f":["c"]}}`), "f", false)
	if err != nil || ok {
		t.Fatalf("Load() = %v, %v, want false, nil", ok, err)
	}
	if s.Len() != 1 {
		t.Errorf("directives applied to a fresh definition: %v", Sorted(s))
	}
}

func TestListErasesFirstMatch(t *testing.T) {
	l := NewList("a", "b", "a")
	err := Optional(object(t, `{"extend":{"f":["c"]},"delete":{"f":"a"}}`), true, "f", Collection[string](l, String))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b", "a", "c"}; !slices.Equal(l.Items(), want) {
		t.Errorf("list = %v, want %v", l.Items(), want)
	}
}

func TestNumberDirectives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"replace", `{"n":3}`, 3},
		{"relative", `{"relative":{"n":5}}`, 15},
		{"relative negative", `{"relative":{"n":-12}}`, -2},
		{"proportional", `{"proportional":{"n":1.5}}`, 15},
		{"proportional shrink", `{"proportional":{"n":0.5}}`, 5},
		{"untouched", `{"relative":{"m":5}}`, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 10
			if err := Optional(object(t, tt.src), true, "n", Number(&n, 0, Int)); err != nil {
				t.Fatalf("Optional() error: %v", err)
			}
			if n != tt.want {
				t.Errorf("n = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestNumberFloat(t *testing.T) {
	f := 2.0
	if err := Optional(object(t, `{"relative":{"w":0.25}}`), true, "w", Number(&f, 0, Float64)); err != nil {
		t.Fatal(err)
	}
	if f != 2.25 {
		t.Errorf("w = %v, want 2.25", f)
	}
}

func TestDirectiveErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field func() Field
		code  errs.Code
		want  string
	}{
		{
			"relative on string",
			`{"relative":{"name":1}}`,
			func() Field { s := "x"; return Value(&s, "", String) },
			errs.ErrCodePolicy,
			"Json error: t.json:1:21: Member name of type string does not support relative",
		},
		{
			"proportional on bool",
			`{"proportional":{"name":2}}`,
			func() Field { b := true; return Value(&b, false, Bool) },
			errs.ErrCodePolicy,
			"does not support proportional",
		},
		{
			"scalar of one",
			`{"proportional":{"name":1}}`,
			func() Field { n := 4; return Number(&n, 0, Int) },
			errs.ErrCodePolicy,
			"Invalid scalar 1 for name",
		},
		{
			"negative scalar",
			`{"proportional":{"name":-2}}`,
			func() Field { n := 4; return Number(&n, 0, Int) },
			errs.ErrCodePolicy,
			"Invalid scalar -2 for name",
		},
		{
			"non-numeric scalar",
			`{"proportional":{"name":"big"}}`,
			func() Field { n := 4; return Number(&n, 0, Int) },
			errs.ErrCodeShape,
			"Invalid scalar for name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Optional(object(t, tt.src), true, "name", tt.field())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestMandatory(t *testing.T) {
	var id string
	err := Mandatory(object(t, `{"name":"x"}`), false, "id", Value(&id, "", String))
	if err == nil {
		t.Fatal("expected error for missing member")
	}
	if want := `Json error: t.json:1:1: missing mandatory member "id"`; !strings.HasPrefix(err.Error(), want) {
		t.Errorf("error = %q, want prefix %q", err.Error(), want)
	}

	// Patches may leave mandatory members out.
	id = "kept"
	if err := Mandatory(object(t, `{"name":"x"}`), true, "id", Value(&id, "", String)); err != nil {
		t.Fatalf("Mandatory() on patch error: %v", err)
	}
	if id != "kept" {
		t.Errorf("id = %q, want %q", id, "kept")
	}
}

func TestOptionalDefaults(t *testing.T) {
	v := "old"
	if err := Optional(object(t, `{}`), false, "v", Value(&v, "def", String)); err != nil {
		t.Fatal(err)
	}
	if v != "def" {
		t.Errorf("fresh definition: v = %q, want %q", v, "def")
	}

	v = "old"
	if err := Optional(object(t, `{}`), true, "v", Value(&v, "def", String)); err != nil {
		t.Fatal(err)
	}
	if v != "old" {
		t.Errorf("patch: v = %q, want %q", v, "old")
	}
}

type weather int

const (
	sunny weather = iota
	rain
	snow
)

var weatherNames = map[string]weather{"clear": sunny, "rain": rain, "snow": snow}

func TestEnum(t *testing.T) {
	var w weather
	if err := Optional(object(t, `{"w":"rain"}`), false, "w", Value(&w, sunny, Enum("weather", weatherNames))); err != nil {
		t.Fatal(err)
	}
	if w != rain {
		t.Errorf("w = %v, want %v", w, rain)
	}

	_, err := Enum("weather", weatherNames)(json.NewReader([]byte(`["clear", "fog"]`), json.WithPath("t.json")))
	if err == nil {
		t.Fatal("expected error for non-string value")
	}

	r := json.NewReader([]byte(`  "fog"`), json.WithPath("t.json"))
	_, err = Enum("weather", weatherNames)(r)
	if want := `Json error: t.json:1:3: invalid weather: "fog"`; err == nil || !strings.HasPrefix(err.Error(), want) {
		t.Errorf("error = %v, want prefix %q", err, want)
	}
}

func TestBits(t *testing.T) {
	flags := map[string]int{"NOFLAG": 0, "LOUD": 1, "WET": 5}
	var b Bits
	b.Insert(1)
	err := Optional(object(t, `{"extend":{"f":["WET","NOFLAG"]},"delete":{"f":"LOUD"}}`), true, "f", Collection[int](&b, Enum("flag", flags)))
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range map[int]bool{0: true, 1: false, 5: true, 2: false} {
		if got := b.Has(i); got != want {
			t.Errorf("Has(%d) = %v, want %v", i, got, want)
		}
	}

	err = Optional(object(t, `{"f":["WET","DRY"]}`), false, "f", Collection[int](&b, Enum("flag", flags)))
	if err == nil || !strings.Contains(err.Error(), `invalid flag: "DRY"`) {
		t.Errorf("error = %v, want invalid flag", err)
	}
}
