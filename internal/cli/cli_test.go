package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/eager"
	"github.com/jacoelho/jpq/internal/log"
	"github.com/jacoelho/jpq/internal/producer"
	"github.com/jacoelho/jpq/internal/source"
	"github.com/jacoelho/jpq/internal/tree"
)

type result struct {
	stdout string
	stderr string
	logs   string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Cleanup(func() { log.SetLevel(log.LevelWarn) })

	var out, errOut, logs bytes.Buffer
	cmd := NewRootCommand(Streams{
		In:     strings.NewReader(stdin),
		Out:    &out,
		Err:    &errOut,
		Logger: log.New(&logs, log.AtomicLevel()),
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), logs: logs.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestQuery(t *testing.T) {
	const doc = `{"foo":1,"bar":2}`

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "all_matching",
			args: []string{"query", "-p", "$.foo", "-p", "$.*"},
			want: lines(
				`{"rule":"$.foo","path":"$.foo","pointer":"/foo","value":1}`,
				`{"rule":"$.*","path":"$.foo","pointer":"/foo","value":1}`,
				`{"rule":"$.*","path":"$.bar","pointer":"/bar","value":2}`,
			),
		},
		{
			name: "most_specific",
			args: []string{"query", "-p", "$.foo", "-p", "$.*", "--most-specific"},
			want: lines(
				`{"rule":"$.foo","path":"$.foo","pointer":"/foo","value":1}`,
				`{"rule":"$.*","path":"$.bar","pointer":"/bar","value":2}`,
			),
		},
		{
			name: "limit",
			args: []string{"query", "-p", "$.*", "--limit", "1"},
			want: lines(`{"rule":"$.*","path":"$.foo","pointer":"/foo","value":1}`),
		},
		{
			name: "sync_go_json",
			args: []string{"query", "-p", "$.bar", "--sync", "--tokenizer", "go-json", "-"},
			want: lines(`{"rule":"$.bar","path":"$.bar","pointer":"/bar","value":2}`),
		},
		{
			name: "cut_subtrees",
			args: []string{"query", "-p", "$", "-p", "$.**", "--cut-subtrees"},
			want: lines(
				`{"rule":"$","path":"$","pointer":"","value":{"foo":1,"bar":2}}`,
				`{"rule":"$.**","path":"$","pointer":"","value":{"foo":1,"bar":2}}`,
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, doc, tt.args...)
			if res.err != nil {
				t.Fatalf("Execute() error = %v", res.err)
			}
			if diff := cmp.Diff(tt.want, res.stdout); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuery_RulesFileAndInputs(t *testing.T) {
	rules := writeFile(t, "rules.yaml", `
options:
  all-matching: false
rules:
  - name: ids
    pattern: ["$", "items", "*", "id"]
`)
	a := writeFile(t, "a.json", `{"items":[{"id":1},{"id":2}]}`)
	b := writeFile(t, "b.json", `{"items":[{"id":3}]}`+"\n"+`{"items":[{"id":4}]}`)

	res := execute(t, "", "query", "--rules", rules, "--summary", a, b)
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}

	want := lines(
		`{"rule":"ids","path":"$.items[0].id","pointer":"/items/0/id","value":1}`,
		`{"rule":"ids","path":"$.items[1].id","pointer":"/items/1/id","value":2}`,
		`{"rule":"ids","path":"$.items[0].id","pointer":"/items/0/id","value":3}`,
		`{"rule":"ids","path":"$.items[0].id","pointer":"/items/0/id","value":4}`,
	)
	if diff := cmp.Diff(want, res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}

	for _, s := range []string{
		a + ": Success (1 document(s), 2 match(es)",
		b + ": Success (2 document(s), 2 match(es)",
		"Processed inputs: 2",
		"Matches:          4",
	} {
		if !strings.Contains(res.stderr, s) {
			t.Errorf("summary does not contain %q:\n%s", s, res.stderr)
		}
	}
}

func TestQuery_LimitAcrossInputs(t *testing.T) {
	a := writeFile(t, "a.json", `[1,2]`)
	b := writeFile(t, "b.json", `[3]`)

	res := execute(t, "", "query", "-p", "$[*]", "--limit", "3", a, b)
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	want := lines(
		`{"rule":"$[*]","path":"$[0]","pointer":"/0","value":1}`,
		`{"rule":"$[*]","path":"$[1]","pointer":"/1","value":2}`,
		`{"rule":"$[*]","path":"$[0]","pointer":"/0","value":3}`,
	)
	if diff := cmp.Diff(want, res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
	}{
		{name: "no_rules", args: []string{"query"}, wantErr: config.ErrNoRules},
		{name: "unknown_tokenizer", args: []string{"query", "-p", "$", "--tokenizer", "simdjson"}, wantErr: source.ErrUnknownDriver},
		{name: "truncated", stdin: `{"a":[1`, args: []string{"query", "-p", "$.a"}, wantErr: tree.ErrUnbalanced},
		{name: "malformed", stdin: `{"a":[1}`, args: []string{"query", "-p", "$.a"}, wantErr: producer.ErrProducerFailure},
		{name: "missing_file", args: []string{"query", "-p", "$", filepath.Join(t.TempDir(), "missing.json")}, wantErr: os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.stdin, tt.args...)
			if !errors.Is(res.err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", res.err, tt.wantErr)
			}
		})
	}
}

func TestQuery_PartialOutputBeforeError(t *testing.T) {
	res := execute(t, `[1,2`, "query", "-p", "$[*]", "--summary")
	if !errors.Is(res.err, tree.ErrUnbalanced) {
		t.Fatalf("Execute() error = %v, want ErrUnbalanced", res.err)
	}
	want := lines(
		`{"rule":"$[*]","path":"$[0]","pointer":"/0","value":1}`,
		`{"rule":"$[*]","path":"$[1]","pointer":"/1","value":2}`,
	)
	if diff := cmp.Diff(want, res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.stderr, "Failed inputs:    1") {
		t.Errorf("summary does not report the failure:\n%s", res.stderr)
	}
}

func TestQuery_LogLevel(t *testing.T) {
	res := execute(t, `{}`, "--log-level", "info", "query", "-p", "$")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	for _, s := range []string{"run started", "run finished", "run_id"} {
		if !strings.Contains(res.logs, s) {
			t.Errorf("logs do not contain %q:\n%s", s, res.logs)
		}
	}

	quiet := execute(t, `{}`, "query", "-p", "$")
	if quiet.logs != "" {
		t.Errorf("logs written at warn level:\n%s", quiet.logs)
	}
}

func TestSelect(t *testing.T) {
	res := execute(t, `{"a":[1,"x",{"b":null}]}`, "select", "$.a[?@ != 1]")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	want := lines(`"x"`, `{"b":null}`)
	if diff := cmp.Diff(want, res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no_expression", args: []string{"select"}, wantErr: errNoExpression},
		{name: "not_found", args: []string{"select", "$.missing"}, wantErr: eager.ErrNotFound},
		{name: "invalid", args: []string{"select", "$["}, wantErr: eager.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, `{"a":1}`, tt.args...)
			if !errors.Is(res.err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", res.err, tt.wantErr)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	want := lines(
		`{"kind":"StartObject"}`,
		`{"key":"a","kind":"Key"}`,
		`{"kind":"StartArray"}`,
		`{"kind":"Atom","value":true}`,
		`{"kind":"Atom","value":null}`,
		`{"kind":"EndArray"}`,
		`{"kind":"EndObject"}`,
	)

	for _, args := range [][]string{
		{"events"},
		{"events", "--sync"},
		{"events", "--queue", "1", "--tokenizer", "go-json"},
	} {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			res := execute(t, `{"a":[true,null]}`, args...)
			if res.err != nil {
				t.Fatalf("Execute() error = %v", res.err)
			}
			if diff := cmp.Diff(want, res.stdout); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvents_Malformed(t *testing.T) {
	res := execute(t, `{"a" 1}`, "events")
	if res.err == nil {
		t.Fatal("Execute() error = nil, want tokenizer error")
	}
}
