package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"pseudocoder/interpreter-go/pkg/interpreter"
	"pseudocoder/interpreter-go/pkg/runtime"
)

// ManifestName is the project file searched for next to pseudocode sources.
const ManifestName = "pseudo.yml"

// ErrManifestNotFound is returned by FindManifest when no manifest exists up to the filesystem root.
var ErrManifestNotFound = errors.New(ManifestName + " not found")

// Manifest represents the parsed contents of pseudo.yml.
type Manifest struct {
	Path         string
	Name         string
	Entry        string
	Types        []string
	MaxCallDepth int
	LogLevel     string
	Source       *SourceSpec

	typesSet bool
}

// SourceSpec describes where the entry program lives when it is not next to the manifest.
type SourceSpec struct {
	Git *GitSpec
}

// GitSpec pins a git repository to one revision. Exactly one of Rev, Tag or Branch is set.
type GitSpec struct {
	URL    string
	Rev    string
	Tag    string
	Branch string
	// Path is the entry file relative to the repository root.
	Path string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses pseudo.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start (a file or directory) looking for pseudo.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

// Validate reports every problem with the manifest at once.
func (m *Manifest) Validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for _, name := range m.Types {
		if !isOptionalType(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("types: %q is not an optional built-in (want one of %s)", name, strings.Join(runtime.OptionalTypes, ", ")))
		}
	}
	if m.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must be positive, got %d", m.MaxCallDepth))
	}
	if m.MaxCallDepth > interpreter.MaxAllowedCallDepth {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth may not exceed %d, got %d", interpreter.MaxAllowedCallDepth, m.MaxCallDepth))
	}
	if m.LogLevel != "" {
		if _, err := zerolog.ParseLevel(m.LogLevel); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log_level: %v", err))
		}
	}
	if m.Source != nil {
		git := m.Source.Git
		switch {
		case git == nil:
			errs.Issues = append(errs.Issues, "source must specify git")
		default:
			if git.URL == "" {
				errs.Issues = append(errs.Issues, "source.git.url must be provided")
			}
			pins := 0
			for _, pin := range []string{git.Rev, git.Tag, git.Branch} {
				if pin != "" {
					pins++
				}
			}
			if pins != 1 {
				errs.Issues = append(errs.Issues, "source.git must specify exactly one of rev, tag, or branch")
			}
			if filepath.IsAbs(git.Path) {
				errs.Issues = append(errs.Issues, "source.git.path must be relative to the repository root")
			}
		}
	}
	if m.Source == nil && m.Entry != "" && filepath.IsAbs(m.Entry) {
		errs.Issues = append(errs.Issues, "entry must be relative to the manifest directory")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// EnabledTypes lists the optional built-ins to install. Nil means the manifest left the choice open.
func (m *Manifest) EnabledTypes() []string {
	if !m.typesSet {
		return nil
	}
	out := make([]string, len(m.Types))
	copy(out, m.Types)
	return out
}

// EntryPath resolves the local entry file relative to the manifest directory.
func (m *Manifest) EntryPath() string {
	entry := m.Entry
	if entry == "" {
		entry = "main.pseudo"
	}
	return filepath.Join(filepath.Dir(m.Path), entry)
}

func isOptionalType(name string) bool {
	for _, candidate := range runtime.OptionalTypes {
		if candidate == name {
			return true
		}
	}
	return false
}

type manifestFile struct {
	Name         string      `yaml:"name"`
	Entry        string      `yaml:"entry"`
	Types        *stringList `yaml:"types"`
	MaxCallDepth int         `yaml:"max_call_depth"`
	LogLevel     string      `yaml:"log_level"`
	Source       *sourceYAML `yaml:"source"`
}

type sourceYAML struct {
	Git *gitYAML `yaml:"git"`
}

type gitYAML struct {
	URL    string `yaml:"url"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Entry:        strings.TrimSpace(mf.Entry),
		MaxCallDepth: mf.MaxCallDepth,
		LogLevel:     strings.ToLower(strings.TrimSpace(mf.LogLevel)),
	}
	if mf.Types != nil {
		result.typesSet = true
		result.Types = make([]string, 0, len(*mf.Types))
		for _, name := range *mf.Types {
			result.Types = append(result.Types, strings.ToUpper(name))
		}
	}
	if mf.Source != nil {
		result.Source = &SourceSpec{}
		if g := mf.Source.Git; g != nil {
			result.Source.Git = &GitSpec{
				URL:    strings.TrimSpace(g.URL),
				Rev:    strings.TrimSpace(g.Rev),
				Tag:    strings.TrimSpace(g.Tag),
				Branch: strings.TrimSpace(g.Branch),
				Path:   strings.TrimSpace(g.Path),
			}
		}
	}
	return result
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = stringList{}
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}
