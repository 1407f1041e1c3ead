package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SyntaxError is the expected-error kind for programs that fail to parse.
const SyntaxError = "SYNTAX_ERROR"

const errorPrefix = "ErrorType."

// Case is one program with its scripted input and expected outcome.
type Case struct {
	Name    string   `yaml:"name"`
	Dialect string   `yaml:"dialect"`
	Program string   `yaml:"program"`
	Input   []string `yaml:"input"`
	Output  []string `yaml:"output"`
	Error   string   `yaml:"error"`

	Source string `yaml:"-"`
}

type suite struct {
	Dialect string  `yaml:"dialect"`
	Cases   []*Case `yaml:"cases"`
}

// Load collects cases from files and directories. Directories are walked for
// .br, .yaml and .yml files; cases come back ordered by source then name.
func Load(paths ...string) ([]*Case, error) {
	var cases []*Case
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			loaded, err := LoadFile(path)
			if err != nil {
				return nil, err
			}
			cases = append(cases, loaded...)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isCaseFile(p) {
				return nil
			}
			loaded, err := LoadFile(p)
			if err != nil {
				return err
			}
			cases = append(cases, loaded...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].Source != cases[j].Source {
			return cases[i].Source < cases[j].Source
		}
		return cases[i].Name < cases[j].Name
	})
	return cases, nil
}

func isCaseFile(path string) bool {
	switch filepath.Ext(path) {
	case ".br", ".yaml", ".yml":
		return true
	}
	return false
}

func LoadFile(path string) ([]*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseSuite(path, data)
	case ".br":
		c, err := ParseProgram(path, string(data))
		if err != nil {
			return nil, err
		}
		return []*Case{c}, nil
	default:
		return nil, fmt.Errorf("%s: not a test case file", path)
	}
}

// ParseSuite decodes a YAML suite. A suite-level dialect applies to every
// case that does not name its own.
func ParseSuite(source string, data []byte) ([]*Case, error) {
	var s suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	for i, c := range s.Cases {
		if c == nil {
			return nil, fmt.Errorf("%s: case %d is empty", source, i+1)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if c.Program == "" {
			return nil, fmt.Errorf("%s: case %q has no program", source, c.Name)
		}
		if c.Dialect == "" {
			c.Dialect = s.Dialect
		}
		c.Error = strings.TrimPrefix(c.Error, errorPrefix)
		c.Source = source
	}
	return s.Cases, nil
}

// ParseProgram reads a .br file whose expectations live in comment blocks:
//
//	/*
//	*IN*
//	5
//	*IN*
//	*OUT*
//	hello
//	ErrorType.TYPE_ERROR
//	*OUT*
//	*/
//
// A last output line of the form ErrorType.KIND marks an expected fatal error.
func ParseProgram(source, src string) (*Case, error) {
	c := &Case{
		Name:    strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)),
		Program: src,
		Source:  source,
	}
	var ok bool
	c.Input, _ = section(src, "*IN*")
	c.Output, ok = section(src, "*OUT*")
	if !ok {
		return nil, fmt.Errorf("%s: missing *OUT* section", source)
	}
	if n := len(c.Output); n > 0 && strings.HasPrefix(c.Output[n-1], errorPrefix) {
		c.Error = strings.TrimPrefix(c.Output[n-1], errorPrefix)
		c.Output = c.Output[:n-1]
	}
	return c, nil
}

// section returns the lines between the first two occurrences of marker.
func section(src, marker string) ([]string, bool) {
	start := strings.Index(src, marker)
	if start < 0 {
		return nil, false
	}
	body := src[start+len(marker):]
	end := strings.Index(body, marker)
	if end < 0 {
		return nil, false
	}
	body = strings.Trim(body[:end], "\r\n")
	if strings.TrimSpace(body) == "" {
		return []string{}, true
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines, true
}
