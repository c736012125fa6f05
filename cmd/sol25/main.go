// SOL25 CLI - checks a SOL25 program and writes its XML document
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/compiler/wire"
	"github.com/chazu/sol25/compiler/xmldoc"
	"github.com/chazu/sol25/manifest"
	"github.com/chazu/sol25/server"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sol25.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	strict     bool
	format     string
	dump       string
	configPath string
	output     string
	verbose    bool
	lsp        bool
	serve      bool
	addr       string
	file       string

	set map[string]bool // flags given explicitly
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("sol25", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&opts.strict, "strict", false, "Reject references to undefined classes")
	fs.StringVar(&opts.format, "format", manifest.DefaultFormat, "Output format: xml or cbor")
	fs.StringVar(&opts.dump, "dump", "", "Write a debug dump of the AST to `FILE`")
	fs.StringVar(&opts.configPath, "config", "", "Read configuration from `FILE` instead of the nearest sol25.toml")
	fs.StringVar(&opts.output, "o", "", "Write the document to `FILE` instead of stdout")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.BoolVar(&opts.lsp, "lsp", false, "Start an LSP server on stdio")
	fs.BoolVar(&opts.serve, "serve", false, "Start the check service (Connect HTTP/JSON)")
	fs.StringVar(&opts.addr, "addr", manifest.DefaultAddr, "Check service address (used with -serve)")

	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	return fs
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: sol25 [options] [FILE]\n\n")
	fmt.Fprintf(w, "Checks a SOL25 program read from FILE (or stdin) and writes its XML document to stdout.\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  sol25 < prog.sol25                # Check stdin, print XML\n")
	fmt.Fprintf(w, "  sol25 -strict -o prog.xml prog.sol25\n")
	fmt.Fprintf(w, "  sol25 -format cbor -o prog.cbor prog.sol25\n")
	fmt.Fprintf(w, "  sol25 -dump ast.txt prog.sol25    # Also write the AST dump\n")
	fmt.Fprintf(w, "\nServers:\n")
	fmt.Fprintf(w, "  sol25 -lsp                        # LSP server on stdio\n")
	fmt.Fprintf(w, "  sol25 -serve -addr :8080          # Check service on :8080\n")
	fmt.Fprintf(w, "\nExit codes:\n")
	fmt.Fprintf(w, "  0 ok, 10 usage, 11 input, 12 output, 21 lexical, 22 syntax,\n")
	fmt.Fprintf(w, "  31 missing Main>>run, 32 undefined class, 33 arity, 99 internal\n")
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "-help", "--help":
		return true
	}
	return false
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &options{set: make(map[string]bool)}
	fs := newFlagSet(opts, stderr)

	// Help is only valid on its own.
	helps := 0
	for _, arg := range args {
		if isHelpArg(arg) {
			helps++
		}
	}
	if helps > 0 {
		if len(args) == 1 {
			printUsage(fs, stdout)
			return int(compiler.ExitOK)
		}
		fmt.Fprintln(stderr, "sol25: --help cannot be combined with other arguments")
		return int(compiler.ExitUsage)
	}

	if err := fs.Parse(args); err != nil {
		return int(compiler.ExitUsage)
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if code := opts.validate(fs.Args(), stderr); code != compiler.ExitOK {
		return int(code)
	}

	if opts.verbose {
		commonlog.Configure(2, nil)
	} else if opts.serve {
		commonlog.Configure(0, nil)
	} else {
		commonlog.Configure(-1, nil)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "sol25: %v\n", err)
		return int(compiler.ExitUsage)
	}
	opts.apply(cfg)
	log.Debugf("format=%s strict=%t indent=%d", opts.format, opts.strict, cfg.Output.Indent)

	checkOpts := compiler.Options{StrictClasses: opts.strict}

	switch {
	case opts.lsp:
		if err := server.NewLSP(checkOpts).Run(); err != nil {
			fmt.Fprintf(stderr, "sol25: lsp: %v\n", err)
			return int(compiler.ExitInternal)
		}
		return int(compiler.ExitOK)

	case opts.serve:
		srv := server.New(server.WithStrictClasses(opts.strict), server.WithIndent(cfg.Output.Indent))
		if err := srv.ListenAndServe(opts.addr); err != nil {
			fmt.Fprintf(stderr, "sol25: server error: %v\n", err)
			return int(compiler.ExitInternal)
		}
		return int(compiler.ExitOK)
	}

	return check(opts, cfg, stdin, stdout, stderr)
}

// validate checks positional arguments and flag combinations.
func (opts *options) validate(rest []string, stderr io.Writer) compiler.ExitCode {
	switch {
	case len(rest) > 1:
		fmt.Fprintf(stderr, "sol25: expected at most one input file, got %d\n", len(rest))
		return compiler.ExitUsage
	case opts.lsp && opts.serve:
		fmt.Fprintln(stderr, "sol25: -lsp and -serve are mutually exclusive")
		return compiler.ExitUsage
	case (opts.lsp || opts.serve) && len(rest) > 0:
		fmt.Fprintln(stderr, "sol25: server modes do not take an input file")
		return compiler.ExitUsage
	case opts.set["format"] && opts.format != manifest.FormatXML && opts.format != manifest.FormatCBOR:
		fmt.Fprintf(stderr, "sol25: unknown format %q (want xml or cbor)\n", opts.format)
		return compiler.ExitUsage
	}
	if len(rest) == 1 {
		opts.file = rest[0]
	}
	return compiler.ExitOK
}

// loadConfig reads the -config file, or the nearest sol25.toml above the
// input, or falls back to defaults.
func (opts *options) loadConfig() (*manifest.Manifest, error) {
	if opts.configPath != "" {
		return manifest.LoadFile(opts.configPath)
	}

	startDir := "."
	if opts.file != "" {
		startDir = filepath.Dir(opts.file)
	}
	m, err := manifest.FindAndLoad(startDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	log.Debugf("using %s", filepath.Join(m.Dir, manifest.FileName))
	return m, nil
}

// apply fills options that were not given on the command line from cfg.
func (opts *options) apply(cfg *manifest.Manifest) {
	if !opts.set["strict"] {
		opts.strict = cfg.Check.StrictClasses
	}
	if !opts.set["format"] {
		opts.format = cfg.Output.Format
	}
	if !opts.set["dump"] {
		opts.dump = cfg.DumpPath()
	}
	if !opts.set["addr"] && cfg.Server.Addr != "" {
		opts.addr = cfg.Server.Addr
	}
}

// check runs the front end over the input and writes the requested outputs.
func check(opts *options, cfg *manifest.Manifest, stdin io.Reader, stdout, stderr io.Writer) int {
	source, err := readInput(opts.file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "sol25: %v\n", err)
		return int(compiler.ExitInput)
	}

	result, err := compiler.Check(source, compiler.Options{StrictClasses: opts.strict})
	if err != nil {
		for _, e := range compiler.Diagnostics(err) {
			fmt.Fprintln(stderr, compiler.FormatDiagnostic(opts.file, e))
		}
		return int(compiler.ExitCodeOf(err))
	}

	if opts.dump != "" {
		if err := writeFile(opts.dump, func(w io.Writer) error {
			return compiler.WriteDump(w, result.Program)
		}); err != nil {
			fmt.Fprintf(stderr, "sol25: dump: %v\n", err)
			return int(compiler.ExitOutput)
		}
	}

	var doc bytes.Buffer
	switch opts.format {
	case manifest.FormatCBOR:
		data, err := wire.Marshal(result.Program, result.Description)
		if err != nil {
			fmt.Fprintf(stderr, "sol25: %v\n", err)
			return int(compiler.ExitInternal)
		}
		doc.Write(data)
	default:
		if err := xmldoc.Write(&doc, result.Program, result.Description, cfg.Output.Indent); err != nil {
			fmt.Fprintf(stderr, "sol25: %v\n", err)
			return int(compiler.ExitInternal)
		}
		if cfg.Output.Indent <= 0 {
			doc.WriteByte('\n')
		}
	}

	if opts.output != "" {
		err = writeFile(opts.output, func(w io.Writer) error {
			_, err := doc.WriteTo(w)
			return err
		})
	} else {
		_, err = doc.WriteTo(stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "sol25: %v\n", err)
		return int(compiler.ExitOutput)
	}

	log.Infof("checked %d classes", result.Classes.Len())
	return int(compiler.ExitOK)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}
