package transformer

import (
	"fmt"
	"os"
	"strings"
)

// Stats aggregates define() counts for one file.
type Stats struct {
	TotalDefines         int
	GetenvDefines        int
	PlainDefines         int
	TransformableDefines int
}

// FileStats scans the whole file content at once. GetenvDefines counts every
// getenv( occurrence in the file, not just those inside define() statements,
// so PlainDefines = TotalDefines - GetenvDefines can diverge from a per-line
// count on unusual inputs. TransformableDefines counts define() statements
// whose value does not already start with a getenv() call.
func (t *Transformer) FileStats(path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, fmt.Errorf("file not found: %s", path)
		}
		return Stats{}, fmt.Errorf("read file: %w", err)
	}
	content := string(data)

	matches := t.definePattern.FindAllStringSubmatchIndex(content, -1)

	stats := Stats{
		TotalDefines:  len(matches),
		GetenvDefines: len(t.getenvPattern.FindAllStringIndex(content, -1)),
	}
	stats.PlainDefines = stats.TotalDefines - stats.GetenvDefines

	for _, idx := range matches {
		value := strings.TrimSpace(content[idx[6]:idx[7]])
		if !strings.HasPrefix(value, getenvPrefix) {
			stats.TransformableDefines++
		}
	}

	return stats, nil
}
