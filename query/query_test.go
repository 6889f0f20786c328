package query_test

import (
	"testing"

	"github.com/creachadair/jwatch/query"
	"github.com/creachadair/jwatch/value"
	"github.com/google/go-cmp/cmp"
)

// An event in the shape delivered by a Kubernetes watch.
const event = `{
  "type": "ADDED",
  "object": {
    "kind": "Event",
    "metadata": {"name": "web-1.17a", "namespace": "default"},
    "involvedObject": {"kind": "Pod", "name": "web-1"},
    "reason": "Scheduled",
    "message": "Successfully assigned default/web-1 to node-3",
    "count": 2,
    "related": [{"name": "a"}, {"name": "b"}, {"id": 3}]
  }
}`

func mustDecode(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	return v
}

func TestQuery(t *testing.T) {
	root := mustDecode(t, event)
	tests := []struct {
		name  string
		query query.Query
		want  string
	}{
		{"Root", query.Path(), event},
		{"Key", query.Path("type"), `"ADDED"`},
		{"Nested", query.Path("object", "metadata", "name"), `"web-1.17a"`},
		{"Index", query.Path("object", "related", 1, "name"), `"b"`},
		{"NegIndex", query.Path("object", "related", -1), `{"id":3}`},
		{"Seq", query.Seq{query.Path("object"), query.Path("count")}, `2`},
		{"Alt", query.Path("object", query.Alt{
			query.Path("series", "count"),
			query.Path("count"),
		}), `2`},
		{"Each", query.Path("object", "involvedObject", query.Glob()), `["Pod","web-1"]`},
		{"Slice", query.Path("object", "related", query.Slice(1, 0)), `[{"name":"b"},{"id":3}]`},
		{"Select", query.Path("object", "related", query.Exists("name")), `[{"name":"a"},{"name":"b"}]`},
		{"Recur", query.Recur("name"), `["web-1.17a","web-1","a","b"]`},
		{"EachKey", query.Path("object", "related", query.Slice(0, 2), query.Each("name")), `["a","b"]`},
		{"IsNot", query.Path("object", query.Glob(), query.IsNot[*value.String]()),
			`[{"name":"web-1.17a","namespace":"default"},{"kind":"Pod","name":"web-1"},2,[{"name":"a"},{"name":"b"},{"id":3}]]`},
		{"Filter", query.Path("object", query.Glob(), query.Filter(func(n *value.Number) bool {
			z, ok := n.Int64()
			return ok && z > 1
		})), `[2]`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := query.Eval(root, test.query)
			if err != nil {
				t.Fatalf("Eval: unexpected error: %v", err)
			}
			want := mustDecode(t, test.want).JSON()
			if got := v.JSON(); got != want {
				t.Errorf("Eval: got %#q, want %#q", got, want)
			}
		})
	}
}

func TestQueryErrors(t *testing.T) {
	root := mustDecode(t, event)
	tests := []struct {
		name  string
		query query.Query
		want  string
	}{
		{"MissingKey", query.Path("object", "nonesuch"), `key "nonesuch" not found`},
		{"NotObject", query.Path("type", "x"), `got string, want object`},
		{"NotArray", query.Path("object", 0), `got object, want array`},
		{"Range", query.Path("object", "related", 3), `index 3 out of range (0..3)`},
		{"NoAlt", query.Alt{}, `no matching alternatives`},
		{"Each", query.Path("object", "related", query.Each("name")), `index 2: key "name" not found`},
		{"Glob", query.Path("type", query.Glob()), `no matching values`},
		{"Recur", query.Recur("nonesuch"), `no matches`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := query.Eval(root, test.query)
			if err == nil {
				t.Fatalf("Eval: got %v, want error", v.JSON())
			}
			if diff := cmp.Diff(test.want, err.Error()); diff != "" {
				t.Errorf("Error (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	root := mustDecode(t, event)
	tests := []struct {
		path string
		want string
	}{
		{"type", "ADDED"},
		{"object.message", "Successfully assigned default/web-1 to node-3"},
		{"object.involvedObject.kind", "Pod"},
		{"object.related.0.name", "a"},
		{"object.related.-1.id", "3"},
		{"object.count", "2"},
		{"object.metadata", `{"name":"web-1.17a","namespace":"default"}`},
	}
	for _, test := range tests {
		q, err := query.ParsePath(test.path)
		if err != nil {
			t.Errorf("ParsePath %q: unexpected error: %v", test.path, err)
			continue
		}
		got, err := query.Text(root, q)
		if err != nil {
			t.Errorf("Text %q: unexpected error: %v", test.path, err)
		} else if got != test.want {
			t.Errorf("Text %q: got %q, want %q", test.path, got, test.want)
		}
	}

	for _, bad := range []string{".", "a..b", "object.", ".type"} {
		if q, err := query.ParsePath(bad); err == nil {
			t.Errorf("ParsePath %q: got %v, want error", bad, q)
		}
	}
}

func TestParseJSONPath(t *testing.T) {
	root := mustDecode(t, event)
	tests := []struct {
		path string
		want string
	}{
		{"$", event},
		{"$.type", `"ADDED"`},
		{"$.object.metadata.name", `"web-1.17a"`},
		{"$['object']['involvedObject'].kind", `"Pod"`},
		{"$.object.'involvedObject'.name", `"web-1"`},
		{"$.object.related[1].name", `"b"`},
		{"$.object.related[-1]", `{"id":3}`},
		{"$.object.related[1:]", `[{"name":"b"},{"id":3}]`},
		{"$.object.related[:2]", `[{"name":"a"},{"name":"b"}]`},
		{"$.object.involvedObject.*", `["Pod","web-1"]`},
		{"$.object.involvedObject[*]", `["Pod","web-1"]`},
		{"$..name", `["web-1.17a","web-1","a","b"]`},
		{"$.object.related..id", `[3]`},
	}
	for _, test := range tests {
		q, err := query.ParseJSONPath(test.path)
		if err != nil {
			t.Errorf("ParseJSONPath %q: unexpected error: %v", test.path, err)
			continue
		}
		v, err := query.Eval(root, q)
		if err != nil {
			t.Errorf("Eval %q: unexpected error: %v", test.path, err)
			continue
		}
		if got, want := v.JSON(), mustDecode(t, test.want).JSON(); got != want {
			t.Errorf("Eval %q: got %#q, want %#q", test.path, got, want)
		}
	}

	// ParsePath accepts JSONPath when the root marker is present.
	q, err := query.ParsePath("$.object.message")
	if err != nil {
		t.Fatalf("ParsePath: unexpected error: %v", err)
	}
	if got, err := query.Text(root, q); err != nil || got != "Successfully assigned default/web-1 to node-3" {
		t.Errorf("Text: got %q, %v", got, err)
	}

	for _, bad := range []string{
		"", "type", "$.", "$..", "$[", "$[1", "$[:]", "$[0,1]",
		"$..book[?(@.isbn)]", "$..book[(@.length-1)]", "$.a b",
	} {
		if q, err := query.ParseJSONPath(bad); err == nil {
			t.Errorf("ParseJSONPath %q: got %v, want error", bad, q)
		}
	}
}
