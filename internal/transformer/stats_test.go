package transformer

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStats(t *testing.T) {
	tr := New()

	t.Run("counts defines and getenv usage", func(t *testing.T) {
		content := strings.Join([]string{
			"<?php",
			"define('A', 1);",
			"define('B', getenv('B', 2));",
			"define(\"C\", 'three');",
			"",
		}, "\n")
		path := writeFixture(t, "config.inc", content)

		stats, err := tr.FileStats(path)
		if err != nil {
			t.Fatalf("FileStats: %v", err)
		}

		if stats.TotalDefines != 3 {
			t.Errorf("TotalDefines = %d, want 3", stats.TotalDefines)
		}
		if stats.GetenvDefines != 1 {
			t.Errorf("GetenvDefines = %d, want 1", stats.GetenvDefines)
		}
		if stats.PlainDefines != stats.TotalDefines-stats.GetenvDefines {
			t.Errorf("PlainDefines = %d, want TotalDefines-GetenvDefines = %d",
				stats.PlainDefines, stats.TotalDefines-stats.GetenvDefines)
		}
		if stats.TransformableDefines != 2 {
			t.Errorf("TransformableDefines = %d, want 2", stats.TransformableDefines)
		}
	})

	t.Run("transformable never exceeds total", func(t *testing.T) {
		content := "define('A', getenv('A', 1));\ndefine('B', 2);\ngetenv('UNRELATED');\n"
		path := writeFixture(t, "mixed.inc", content)

		stats, err := tr.FileStats(path)
		if err != nil {
			t.Fatalf("FileStats: %v", err)
		}
		if stats.TransformableDefines > stats.TotalDefines {
			t.Errorf("TransformableDefines %d > TotalDefines %d", stats.TransformableDefines, stats.TotalDefines)
		}
		// getenv occurrences are counted file-wide, including outside defines.
		if stats.GetenvDefines != 2 {
			t.Errorf("GetenvDefines = %d, want 2", stats.GetenvDefines)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFixture(t, "empty.inc", "")

		stats, err := tr.FileStats(path)
		if err != nil {
			t.Fatalf("FileStats: %v", err)
		}
		if stats != (Stats{}) {
			t.Errorf("stats = %+v, want zero value", stats)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := tr.FileStats(filepath.Join(t.TempDir(), "nope.inc"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if !strings.Contains(err.Error(), "file not found") {
			t.Errorf("error = %v, want file not found", err)
		}
	})
}
