package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pseudocoder/interpreter-go/pkg/interpreter"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	require.NoError(t, wOut.Close())
	require.NoError(t, wErr.Close())

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	require.NoError(t, err)
	errBytes, err := io.ReadAll(rErr)
	require.NoError(t, err)
	require.NoError(t, rOut.Close())
	require.NoError(t, rErr.Close())

	return code, string(outBytes), string(errBytes)
}

const swapProgram = `DECLARE a : INTEGER
DECLARE b : INTEGER
a <- 1
b <- 2
PROCEDURE Swap(BYREF x : INTEGER, y : INTEGER)
  DECLARE t : INTEGER
  t <- x
  x <- y
  y <- t
ENDPROCEDURE
CALL Swap(a, b)
OUTPUT a & ""
`

func TestVersionAndHelp(t *testing.T) {
	code, out, _ := captureCLI(t, []string{"version"})
	assert.Equal(t, 0, code)
	assert.Equal(t, cliToolVersion+"\n", out)

	code, out, _ = captureCLI(t, []string{"--help"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "pseudo repl")
}

func TestRunDirectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.pseudo")
	writeFile(t, path, "DECLARE n : INTEGER\nn <- 6 * 7\nOUTPUT n\nOUTPUT 7 / 2\n")

	code, out, errOut := captureCLI(t, []string{path})
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "42\n3.5\n", out)

	code, out, _ = captureCLI(t, []string{"run", path})
	require.Equal(t, 0, code)
	assert.Equal(t, "42\n3.5\n", out)
}

func TestRunReportsRuntimeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.pseudo")
	writeFile(t, path, swapProgram)

	code, out, errOut := captureCLI(t, []string{path})
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "runtime error")
	assert.Contains(t, errOut, "TypeMismatch")
	assert.Contains(t, errOut, "line 12")
}

func TestRunReportsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pseudo")
	writeFile(t, path, "OUTPUT 1\nWHILE TRUE\n")

	code, _, errOut := captureCLI(t, []string{path})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "failed to load program")
	assert.Contains(t, errOut, "syntax error")
}

func TestRunUsesManifest(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "pseudo.yml"), `
name: demo
entry: src/app.pseudo
types: [STRING]
max_call_depth: 20
`)
	writeFile(t, filepath.Join(dir, "src", "app.pseudo"), `PROCEDURE Down(n : INTEGER)
  IF n > 0 THEN
    CALL Down(n - 1)
  ENDIF
ENDPROCEDURE
CALL Down(10)
OUTPUT "shallow ok"
CALL Down(50)
`)

	code, out, errOut := captureCLI(t, nil)
	assert.Equal(t, 1, code)
	assert.Equal(t, "shallow ok\n", out)
	assert.Contains(t, errOut, "StackExhausted")

	code, out, errOut = captureCLI(t, []string{"run", "--max-depth", "100"})
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "shallow ok\n", out)
}

func TestRunCoreTypesFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dates.pseudo")
	writeFile(t, path, "OUTPUT 01/02/2003\n")

	code, out, _ := captureCLI(t, []string{"run", path})
	require.Equal(t, 0, code)
	assert.Equal(t, "01/02/2003\n", out)

	code, _, errOut := captureCLI(t, []string{"run", "--core-types", "STRING,CHAR", path})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "InvalidLiteral")
}

func TestRunRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.pseudo")
	writeFile(t, path, "OUTPUT 1\n")

	code, _, errOut := captureCLI(t, []string{"run", "--max-depth", "0", path})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--max-depth")

	code, _, errOut = captureCLI(t, []string{"run", "--max-depth", "100000000", path})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "may not exceed")

	code, _, errOut = captureCLI(t, []string{"run", "--log-level", "chatty", path})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid log level")

	code, _, _ = captureCLI(t, []string{"run", "--no-such-flag", path})
	assert.Equal(t, 2, code)
}

func TestRunWithoutManifestOrFile(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, errOut := captureCLI(t, []string{"run"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "pseudo.yml not found")
}

func initProgramRepo(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	for name, contents := range files {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), contents)
		_, err := worktree.Add(name)
		require.NoError(t, err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Pseudo CLI",
			Email: "pseudo@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestRunAndFetchFromGitSource(t *testing.T) {
	repoDir := t.TempDir()
	commit := initProgramRepo(t, repoDir, map[string]string{
		"lessons/loop.pseudo": "DECLARE i : INTEGER\nFOR i <- 1 TO 3\n  OUTPUT i\nNEXT i\n",
	})

	t.Setenv("PSEUDO_HOME", t.TempDir())
	project := t.TempDir()
	chdir(t, project)
	writeFile(t, filepath.Join(project, "pseudo.yml"), `
name: remote
source:
  git:
    url: `+repoDir+`
    rev: `+commit+`
    path: lessons/loop.pseudo
`)

	code, out, errOut := captureCLI(t, []string{"fetch"})
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, commit+" "), "fetch output %q", out)

	code, out, errOut = captureCLI(t, []string{"run"})
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestFetchRequiresGitSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "pseudo.yml"), "name: local\n")
	code, _, errOut := captureCLI(t, []string{"fetch"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "source.git")
}

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func TestReplLoopKeepsState(t *testing.T) {
	var out, errOut bytes.Buffer
	interp, err := interpreter.NewWithOptions(interpreter.Options{Output: &out})
	require.NoError(t, err)

	reader := &scriptedReader{lines: []string{
		"DECLARE x : INTEGER",
		"x <- 5",
		"IF x > 1 THEN",
		`  OUTPUT "big"`,
		"ENDIF",
		"OUTPUT y",
		"OUTPUT x * 2",
		":bogus",
		":quit",
		"OUTPUT 99",
	}}
	var history []string
	code := replLoop(reader, interp, &out, &errOut, func(entry string) {
		history = append(history, entry)
	})

	assert.Equal(t, 0, code)
	assert.Equal(t, "big\n10\nunknown command. Type :quit to exit.\n", out.String())
	assert.Contains(t, errOut.String(), "UndefinedIdentifier")
	assert.Equal(t, []string{promptMain, promptMain, promptMain, promptCont, promptCont, promptMain, promptMain, promptMain, promptMain}, reader.prompts)
	assert.Contains(t, history, `IF x > 1 THEN   OUTPUT "big" ENDIF`)
}

func TestReplLoopEndsOnEOF(t *testing.T) {
	var out, errOut bytes.Buffer
	interp, err := interpreter.NewWithOptions(interpreter.Options{Output: &out})
	require.NoError(t, err)

	code := replLoop(&scriptedReader{lines: []string{"OUTPUT 'z'", "OUTPUT 1 +"}}, interp, &out, &errOut, nil)
	assert.Equal(t, 0, code)
	assert.Equal(t, "z\n\n", out.String())
	assert.Empty(t, errOut.String())
}
