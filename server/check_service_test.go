package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/sol25/compiler"
)

const checkTestProgram = `"Say hello"
class Main : Object {
  run [ | x := 42. ]
}
`

func bg() context.Context {
	return context.Background()
}

func TestCheck_AdmissibleProgram(t *testing.T) {
	svc := NewCheckService(compiler.Options{}, 2)

	resp, err := svc.Check(bg(), connect.NewRequest(&CheckRequest{Source: checkTestProgram}))
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if resp.Msg.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0 (diagnostics %+v)", resp.Msg.ExitCode, resp.Msg.Diagnostics)
	}
	for _, want := range []string{
		`<program language="SOL25" description="Say hello">`,
		`<class name="Main" parent="Object">`,
		`<literal class="Integer" value="42"/>`,
	} {
		if !strings.Contains(resp.Msg.Document, want) {
			t.Errorf("document missing %q:\n%s", want, resp.Msg.Document)
		}
	}
	if len(resp.Msg.Fingerprint) != 64 {
		t.Errorf("fingerprint = %q, want 64 hex digits", resp.Msg.Fingerprint)
	}
}

func TestCheck_FingerprintIgnoresLayout(t *testing.T) {
	svc := NewCheckService(compiler.Options{}, 2)

	a, err := svc.Check(bg(), connect.NewRequest(&CheckRequest{Source: checkTestProgram}))
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Check(bg(), connect.NewRequest(&CheckRequest{
		Source: `class Main:Object{run[|x:=42.]} "other comment"`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if a.Msg.Fingerprint != b.Msg.Fingerprint {
		t.Errorf("fingerprints differ: %s vs %s", a.Msg.Fingerprint, b.Msg.Fingerprint)
	}
}

func TestCheck_RejectedProgram(t *testing.T) {
	tests := []struct {
		name   string
		source string
		strict bool
		want   compiler.ExitCode
	}{
		{"lexical", "class Main : Object { run [ | x := 'oops. ] }", false, compiler.ExitLexical},
		{"syntax", "class Main : Object { run [ | x := . ] }", false, compiler.ExitSyntax},
		{"reserved word", "class Main : Object { run [ | self := 1. ] }", false, compiler.ExitSyntax},
		{"missing main", "class Foo : Object { }", false, compiler.ExitMissingMain},
		{"undefined class", "class Main : Object { run [ | x := Nope new. ] }", true, compiler.ExitUndefinedClass},
		{"arity", "class Main : Object { run [ :a | ] }", false, compiler.ExitSemantic},
	}

	svc := NewCheckService(compiler.Options{}, 2)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Check(bg(), connect.NewRequest(&CheckRequest{Source: tc.source, Strict: tc.strict}))
			if err != nil {
				t.Fatalf("Check returned error: %v", err)
			}
			if resp.Msg.ExitCode != int(tc.want) {
				t.Errorf("exit code = %d, want %d", resp.Msg.ExitCode, tc.want)
			}
			if len(resp.Msg.Diagnostics) == 0 {
				t.Fatal("rejected program should carry diagnostics")
			}
			if resp.Msg.Diagnostics[0].Code != int(tc.want) {
				t.Errorf("diagnostic code = %d, want %d", resp.Msg.Diagnostics[0].Code, tc.want)
			}
			if resp.Msg.Document != "" || resp.Msg.Fingerprint != "" {
				t.Error("rejected program should not carry a document")
			}
		})
	}
}

func TestCheck_OverHTTP(t *testing.T) {
	srv := New(WithIndent(0))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := NewCheckClient(ts.Client(), ts.URL)

	resp, err := client.CallUnary(bg(), connect.NewRequest(&CheckRequest{Source: checkTestProgram}))
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if resp.Msg.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", resp.Msg.ExitCode)
	}
	if strings.Contains(resp.Msg.Document, "\n  <class") {
		t.Errorf("WithIndent(0) should produce an unindented document:\n%s", resp.Msg.Document)
	}

	resp, err = client.CallUnary(bg(), connect.NewRequest(&CheckRequest{Source: "class Foo { }"}))
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if resp.Msg.ExitCode != int(compiler.ExitMissingMain) {
		t.Errorf("exit code = %d, want %d", resp.Msg.ExitCode, compiler.ExitMissingMain)
	}
}

func TestServer_StrictDefault(t *testing.T) {
	srv := New(WithStrictClasses(true))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := NewCheckClient(ts.Client(), ts.URL)
	resp, err := client.CallUnary(bg(), connect.NewRequest(&CheckRequest{
		Source: "class Main : Base { run [ | ] }",
	}))
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if resp.Msg.ExitCode != int(compiler.ExitUndefinedClass) {
		t.Errorf("exit code = %d, want %d", resp.Msg.ExitCode, compiler.ExitUndefinedClass)
	}
}
