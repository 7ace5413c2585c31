package binding

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada","tags":["x","y"]},"total":42,"rate":0.5}`)
	for in, want := range map[string]string{
		"Hello, ${user.name}!": "Hello, Ada!",
		"${user.tags[1]}":      "y",
		"${ total } / ${rate}": "42 / 0.5",
		"${missing.path}":      "${missing.path}",
		"${user.tags[9]}":      "${user.tags[9]}",
		"no placeholders":      "no placeholders",
		"${user.name}${total}": "Ada42",
	} {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("nil data should keep placeholders, got %q", got)
	}
}

func TestScopeVariablesShadowData(t *testing.T) {
	data := decode(t, `{"page":"data","item":{"name":"outer"}}`)
	s := New(data)
	if got := s.Interpolate("${page}"); got != "data" {
		t.Fatalf("root lookup = %q", got)
	}
	inner := s.With("page", 3).With("item", map[string]any{"name": "inner"})
	if got := inner.Interpolate("${page}: ${item.name}"); got != "3: inner" {
		t.Fatalf("scoped lookup = %q", got)
	}
	if got := s.Interpolate("${item.name}"); got != "outer" {
		t.Fatalf("parent scope modified: %q", got)
	}
}

func TestScopeItems(t *testing.T) {
	s := New(decode(t, `{"rows":[{"n":1},{"n":2}],"name":"x"}`))
	items, err := s.Items("rows")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var got []string
	for _, it := range items {
		got = append(got, s.With("row", it).Interpolate("${row.n}"))
	}
	if diff := cmp.Diff([]string{"1", "2"}, got); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	if _, err := s.Items("name"); err == nil {
		t.Fatalf("expected error for non-array path")
	}
	if _, err := s.Items("nope"); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestFormat(t *testing.T) {
	for _, c := range []struct {
		in   any
		want string
	}{{3.0, "3"}, {2.25, "2.25"}, {true, "true"}, {nil, ""}, {"s", "s"}, {7, "7"}} {
		if got := Format(c.in); got != c.want {
			t.Fatalf("Format(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
