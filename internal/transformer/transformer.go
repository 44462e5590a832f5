// Package transformer rewrites PHP define() statements so that constants
// read their value from an environment variable, keeping the original
// literal as the fallback:
//
//	define('DB_HOST', 'localhost');
//	define('DB_HOST', getenv('DB_HOST', 'localhost'));
//
// Lines that already call getenv() are left untouched, so running the
// transform over its own output is a no-op.
package transformer

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// getenvPrefix is the opening token of a getenv() call, used for the
// value-level duplicate check.
const getenvPrefix = "getenv("

// Change describes one rewritten line. Original and Transformed carry the
// line content with the terminator stripped, for display.
type Change struct {
	LineNumber  int
	Original    string
	Transformed string
}

// Transformer recognizes single-line define() statements and rewrites them.
type Transformer struct {
	// RE2 has no backreferences, so the quoted constant name is matched
	// with an explicit single-/double-quote alternation; which group
	// participated tells us the quote character to preserve.
	definePattern *regexp.Regexp
	getenvPattern *regexp.Regexp
}

func New() *Transformer {
	return &Transformer{
		definePattern: regexp.MustCompile(`define\s*\(\s*(?:'([^']*)'|"([^"]*)")\s*,\s*(.*?)\s*\)\s*;`),
		getenvPattern: regexp.MustCompile(`getenv\s*\(`),
	}
}

// splitEnding separates a line's terminator (none, \n, or \r\n) from its
// content. The terminator is reattached verbatim to any output.
func splitEnding(line string) (content, ending string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// TransformLine rewrites a single line if it contains a define() statement
// whose value is not already a getenv() call. It returns the output line and
// whether anything changed; unmatched lines pass through byte-identical.
func (t *Transformer) TransformLine(line string) (string, bool) {
	content, ending := splitEnding(line)

	if t.getenvPattern.MatchString(content) {
		return line, false
	}

	idx := t.definePattern.FindStringSubmatchIndex(content)
	if idx == nil {
		return line, false
	}

	quote := `"`
	var name string
	if idx[2] >= 0 {
		quote = "'"
		name = content[idx[2]:idx[3]]
	} else {
		name = content[idx[4]:idx[5]]
	}
	value := strings.TrimSpace(content[idx[6]:idx[7]])

	// The getenv check above already skips migrated lines, but a value can
	// start with getenv( without the pattern firing on this exact content;
	// keep the duplicate check so we never double-wrap.
	if strings.HasPrefix(value, getenvPrefix) {
		return line, false
	}

	// Canonical spacing; the name keeps its original quote style while the
	// env-var name argument is always single-quoted.
	out := fmt.Sprintf("define(%s%s%s, getenv('%s', %s));%s", quote, name, quote, name, value, ending)
	return out, true
}

// ScanFile reports the changes a rewrite of path would make, without
// touching the file.
func (t *Transformer) ScanFile(path string) ([]Change, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	changes, _ := t.transformLines(lines)
	return changes, nil
}

// RewriteFile applies the transform to every line of path and overwrites the
// file with the result in a single write. Unchanged lines are written back
// byte-for-byte.
func (t *Transformer) RewriteFile(path string) ([]Change, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	changes, out := t.transformLines(lines)

	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	return changes, nil
}

func (t *Transformer) transformLines(lines []string) ([]Change, string) {
	var changes []Change
	var out strings.Builder

	for i, line := range lines {
		transformed, changed := t.TransformLine(line)
		if changed {
			origContent, _ := splitEnding(line)
			newContent, _ := splitEnding(transformed)
			changes = append(changes, Change{
				LineNumber:  i + 1,
				Original:    origContent,
				Transformed: newContent,
			})
		}
		out.WriteString(transformed)
	}
	return changes, out.String()
}

// readLines reads the whole file and splits it into lines with their
// terminators preserved. The final line may have no terminator.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	content := string(data)
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines, nil
}
