package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"pseudocoder/interpreter-go/pkg/interpreter"
	"pseudocoder/interpreter-go/pkg/parser"
)

const (
	historyFile = ".pseudo_history"
	promptMain  = "pseudo> "
	promptCont  = "   ...> "
	banner      = "pseudo REPL (" + cliToolVersion + "). Type :quit to exit."
)

// lineReader is the part of liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	s := newSettings("repl")
	if err := s.fs.Parse(args); err != nil {
		return 2
	}
	if len(s.fs.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "pseudo repl does not take arguments (received %s)\n", strings.Join(s.fs.Args(), " "))
		return 1
	}
	manifest, err := loadManifestFor(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	opts, _, err := s.options(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	interp, err := interpreter.NewWithOptions(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	return replLoop(ln, interp, os.Stdout, os.Stderr, ln.AppendHistory)
}

// replLoop executes chunks against one interpreter so declarations persist between inputs.
func replLoop(in lineReader, interp *interpreter.Interpreter, out, errOut io.Writer, remember func(string)) int {
	for {
		code, ok := readByParseProbe(in, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(out)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return 0
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}
		if remember != nil {
			remember(strings.ReplaceAll(code, "\n", " "))
		}

		program, err := parser.ParseProgram([]byte(code))
		if err != nil {
			fmt.Fprintln(errOut, err.Error())
			continue
		}
		if err := interp.ExecuteProgram(program); err != nil {
			fmt.Fprintf(errOut, "runtime error: %v\n", err)
		}
	}
}

// readByParseProbe keeps prompting while the accumulated input parses as incomplete.
func readByParseProbe(in lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = in.Prompt(prompt)
		} else {
			line, err = in.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// liner.ErrPromptAborted on Ctrl-C drops the pending chunk.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := parser.ParseProgram([]byte(src))
		if perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
