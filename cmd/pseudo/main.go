package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"pseudocoder/interpreter-go/pkg/driver"
	"pseudocoder/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "pseudo 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runEntry(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "fetch":
		return runFetch(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pseudo run [flags] [file.pseudo]")
	fmt.Fprintln(w, "  pseudo [flags] <file.pseudo>")
	fmt.Fprintln(w, "  pseudo repl [flags]")
	fmt.Fprintln(w, "  pseudo fetch")
	fmt.Fprintln(w, "  pseudo version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --max-depth N       maximum nested procedure/function calls")
	fmt.Fprintln(w, "  --log-level LEVEL   trace, debug, info, warn or error")
	fmt.Fprintln(w, "  --core-types LIST   optional built-ins to enable, e.g. STRING,DATE")
}

// settings collects the flags shared by run and repl. Flags override the manifest.
type settings struct {
	fs        *flag.FlagSet
	maxDepth  int
	logLevel  string
	coreTypes string
}

func newSettings(name string) *settings {
	s := &settings{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	s.fs.SetOutput(os.Stderr)
	s.fs.IntVar(&s.maxDepth, "max-depth", 0, "maximum nested procedure/function calls")
	s.fs.StringVar(&s.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	s.fs.StringVar(&s.coreTypes, "core-types", "", "comma separated optional built-ins to enable")
	return s
}

func (s *settings) flagSet(name string) bool {
	set := false
	s.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// options merges the manifest (which may be nil) with the command line.
func (s *settings) options(manifest *driver.Manifest) (interpreter.Options, zerolog.Logger, error) {
	opts := interpreter.Options{Output: os.Stdout}
	level := "warn"
	if manifest != nil {
		opts.MaxCallDepth = manifest.MaxCallDepth
		opts.Types = manifest.EnabledTypes()
		if manifest.LogLevel != "" {
			level = manifest.LogLevel
		}
	}
	if s.flagSet("max-depth") {
		if s.maxDepth <= 0 {
			return opts, zerolog.Nop(), fmt.Errorf("--max-depth must be positive, got %d", s.maxDepth)
		}
		if s.maxDepth > interpreter.MaxAllowedCallDepth {
			return opts, zerolog.Nop(), fmt.Errorf("--max-depth may not exceed %d, got %d", interpreter.MaxAllowedCallDepth, s.maxDepth)
		}
		opts.MaxCallDepth = s.maxDepth
	}
	if s.flagSet("log-level") {
		level = s.logLevel
	}
	if s.flagSet("core-types") {
		opts.Types = splitTypeList(s.coreTypes)
	}
	logger, err := newLogger(level)
	if err != nil {
		return opts, zerolog.Nop(), err
	}
	opts.Logger = &logger
	return opts, logger, nil
}

func splitTypeList(list string) []string {
	types := make([]string, 0)
	for _, part := range strings.Split(list, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			types = append(types, part)
		}
	}
	return types
}

// newLogger writes human-readable logs to stderr, coloured only on a terminal.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(lvl)
	}
	writer := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}

// loadManifestFor finds and loads the manifest governing start. A missing manifest is not an error.
func loadManifestFor(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

func newFetcher(logger zerolog.Logger) (*driver.GitFetcher, error) {
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	return driver.NewGitFetcher(cacheDir, logger), nil
}

func runEntry(args []string) int {
	s := newSettings("run")
	if err := s.fs.Parse(args); err != nil {
		return 2
	}
	rest := s.fs.Args()
	if len(rest) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return 1
	}

	start := "."
	if len(rest) == 1 {
		start = rest[0]
	}
	manifest, err := loadManifestFor(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	if len(rest) == 0 && manifest == nil {
		fmt.Fprintf(os.Stderr, "pseudo run requires a source file (%s not found)\n", driver.ManifestName)
		return 1
	}

	opts, logger, err := s.options(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	entry := ""
	if len(rest) == 1 {
		entry = rest[0]
	} else {
		fetcher, err := newFetcher(logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		entry, err = driver.ResolveEntry(manifest, fetcher)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve entry: %v\n", err)
			return 1
		}
	}
	return executeEntry(entry, opts, logger)
}

func executeEntry(entry string, opts interpreter.Options, logger zerolog.Logger) int {
	program, err := driver.LoadProgram(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return 1
	}
	interp, err := interpreter.NewWithOptions(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	logger.Debug().Str("entry", entry).Msg("executing")
	if err := interp.ExecuteProgram(program); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		return 1
	}
	return 0
}

func runFetch(args []string) int {
	s := newSettings("fetch")
	if err := s.fs.Parse(args); err != nil {
		return 2
	}
	if len(s.fs.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "pseudo fetch does not take arguments (received %s)\n", strings.Join(s.fs.Args(), " "))
		return 1
	}
	manifest, err := loadManifestFor(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	if manifest == nil || manifest.Source == nil || manifest.Source.Git == nil {
		fmt.Fprintf(os.Stderr, "pseudo fetch requires a %s with a source.git section\n", driver.ManifestName)
		return 1
	}
	_, logger, err := s.options(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	fetcher, err := newFetcher(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	checkout, err := fetcher.Fetch(manifest.Source.Git)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", checkout.Commit, checkout.Dir)
	return 0
}
