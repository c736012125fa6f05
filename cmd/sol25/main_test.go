package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/compiler/wire"
	"github.com/chazu/sol25/manifest"
)

const helloProgram = `"Prints hello"
class Main : Object {
  run [ |
    x := 'Hello' print.
  ]
}
`

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_StdinToXML(t *testing.T) {
	code, stdout, stderr := runCLI(t, helloProgram)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<program language="SOL25" description="Prints hello">`,
		`<send selector="print">`,
		`<literal class="String" value="Hello"/>`,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		args   []string
		want   compiler.ExitCode
	}{
		{"lexical", "class Main : Object { run [ | x := 1 # 2. ] }", nil, compiler.ExitLexical},
		{"syntax", "class Main : Object { run [ | x := ] }", nil, compiler.ExitSyntax},
		{"reserved class name", "class nil : Object { }", nil, compiler.ExitSyntax},
		{"missing main", "class Other : Object { run [ | ] }", nil, compiler.ExitMissingMain},
		{"missing run", "class Main : Object { go [ | ] }", nil, compiler.ExitMissingMain},
		{"undefined class strict", "class Main : Object { run [ | x := Ghost new. ] }", []string{"-strict"}, compiler.ExitUndefinedClass},
		{"undefined class lenient", "class Main : Object { run [ | x := Ghost new. ] }", nil, compiler.ExitOK},
		{"arity", "class Main : Object { run [ | ] at: [ | ] }", nil, compiler.ExitSemantic},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tc.source, tc.args...)
			if code != int(tc.want) {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tc.want, stderr)
			}
			if tc.want != compiler.ExitOK {
				if stdout != "" {
					t.Errorf("stdout = %q, want empty on failure", stdout)
				}
				if !strings.HasPrefix(stderr, "<stdin>") {
					t.Errorf("stderr = %q, want a <stdin> diagnostic", stderr)
				}
			}
		})
	}
}

func TestRun_ArityReportsEveryViolation(t *testing.T) {
	source := `class Main : Object {
  run [ | ]
  at: [ | ]
  at:put: [ :a | ]
}`
	code, _, stderr := runCLI(t, source)
	if code != int(compiler.ExitSemantic) {
		t.Fatalf("exit code = %d, want %d", code, compiler.ExitSemantic)
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d diagnostic lines, want 2:\n%s", len(lines), stderr)
	}
	for _, line := range lines {
		if !strings.Contains(line, "error[33]") {
			t.Errorf("diagnostic %q should carry code 33", line)
		}
	}
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help", "-help"} {
		code, stdout, _ := runCLI(t, "", arg)
		if code != 0 {
			t.Errorf("%s: exit code = %d, want 0", arg, code)
		}
		if !strings.Contains(stdout, "Usage: sol25") {
			t.Errorf("%s: usage not printed to stdout", arg)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"help twice", []string{"--help", "--help"}},
		{"help with file", []string{"--help", "prog.sol25"}},
		{"help with flag", []string{"-strict", "-h"}},
		{"unknown flag", []string{"-bogus"}},
		{"two files", []string{"a.sol25", "b.sol25"}},
		{"bad format", []string{"-format", "json"}},
		{"lsp and serve", []string{"-lsp", "-serve"}},
		{"server with file", []string{"-serve", "prog.sol25"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, helloProgram, tc.args...)
			if code != int(compiler.ExitUsage) {
				t.Errorf("exit code = %d, want %d", code, compiler.ExitUsage)
			}
			if stdout != "" {
				t.Errorf("stdout = %q, want empty", stdout)
			}
		})
	}
}

func TestRun_MissingInputFile(t *testing.T) {
	code, _, stderr := runCLI(t, "", filepath.Join(t.TempDir(), "absent.sol25"))
	if code != int(compiler.ExitInput) {
		t.Errorf("exit code = %d, want %d (stderr %q)", code, compiler.ExitInput, stderr)
	}
}

func TestRun_FileDiagnosticNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.sol25", "class Main : Object {\n  run [ | self := 1. ]\n}\n")

	code, _, stderr := runCLI(t, "", path)
	if code != int(compiler.ExitSyntax) {
		t.Fatalf("exit code = %d, want %d", code, compiler.ExitSyntax)
	}
	if want := path + ":2:11: error[22]:"; !strings.HasPrefix(stderr, want) {
		t.Errorf("stderr = %q, want prefix %q", stderr, want)
	}
}

func TestRun_OutputAndDumpFiles(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "hello.sol25", helloProgram)
	out := filepath.Join(dir, "hello.xml")
	dump := filepath.Join(dir, "hello.ast")

	code, stdout, stderr := runCLI(t, "", "-o", out, "-dump", dump, src)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty when -o is given", stdout)
	}

	doc, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), `<class name="Main" parent="Object">`) {
		t.Errorf("output file missing class element:\n%s", doc)
	}

	ast, err := os.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(ast), "program\n  class Main parent=Object\n") {
		t.Errorf("dump = %q", ast)
	}
}

func TestRun_UnwritableOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing-dir", "out.xml")
	code, _, _ := runCLI(t, helloProgram, "-o", out)
	if code != int(compiler.ExitOutput) {
		t.Errorf("exit code = %d, want %d", code, compiler.ExitOutput)
	}
}

func TestRun_CBOR(t *testing.T) {
	code, stdout, stderr := runCLI(t, helloProgram, "-format", "cbor")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	prog, desc, err := wire.Unmarshal([]byte(stdout))
	if err != nil {
		t.Fatalf("wire.Unmarshal: %v", err)
	}
	if desc != "Prints hello" {
		t.Errorf("description = %q", desc)
	}
	if len(prog.Classes) != 1 || prog.Classes[0].Name != "Main" {
		t.Errorf("classes = %+v", prog.Classes)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "prog.sol25", "class Main : Object { run [ | x := Ghost new. ] }")
	writeTemp(t, dir, manifest.FileName, "[check]\nstrict-classes = true\n[output]\nindent = 0\n")

	// Discovered next to the input
	code, _, _ := runCLI(t, "", src)
	if code != int(compiler.ExitUndefinedClass) {
		t.Errorf("exit code = %d, want %d from discovered config", code, compiler.ExitUndefinedClass)
	}

	// Explicit flag wins over the file
	code, stdout, _ := runCLI(t, "", "-strict=false", src)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 with -strict=false", code)
	}
	if strings.Count(strings.TrimSpace(stdout), "\n") != 0 {
		t.Errorf("indent = 0 should produce a single-line document, got:\n%s", stdout)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTemp(t, dir, "bad.toml", "[output]\nformat = \"yaml\"\n")

	code, _, stderr := runCLI(t, helloProgram, "-config", cfg)
	if code != int(compiler.ExitUsage) {
		t.Errorf("exit code = %d, want %d (stderr %q)", code, compiler.ExitUsage, stderr)
	}
}
