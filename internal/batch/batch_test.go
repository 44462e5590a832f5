package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDriver() (*Driver, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewDriver(out, errOut), out, errOut
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestTransform(t *testing.T) {
	t.Run("copies and rewrites matching files", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		dst := filepath.Join(tmp, "result")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}

		writeFile(t, filepath.Join(src, "db.inc"), "define('DB_HOST', 'localhost');\n")
		writeFile(t, filepath.Join(src, "plain.inc"), "<?php\n$x = 1;\n")
		writeFile(t, filepath.Join(src, "readme.txt"), "not a config\n")

		driver, out, _ := newTestDriver()
		sum, err := driver.Transform(src, dst, ".inc", nil)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}

		if sum.FilesProcessed != 2 {
			t.Errorf("FilesProcessed = %d, want 2", sum.FilesProcessed)
		}
		if sum.FilesWithChanges != 1 {
			t.Errorf("FilesWithChanges = %d, want 1", sum.FilesWithChanges)
		}
		if sum.TotalChanges != 1 {
			t.Errorf("TotalChanges = %d, want 1", sum.TotalChanges)
		}

		got, err := os.ReadFile(filepath.Join(dst, "db.inc"))
		if err != nil {
			t.Fatalf("read result: %v", err)
		}
		want := "define('DB_HOST', getenv('DB_HOST', 'localhost'));\n"
		if string(got) != want {
			t.Errorf("db.inc = %q, want %q", got, want)
		}

		// Zero-match file is copied unchanged.
		gotPlain, err := os.ReadFile(filepath.Join(dst, "plain.inc"))
		if err != nil {
			t.Fatalf("read result: %v", err)
		}
		if string(gotPlain) != "<?php\n$x = 1;\n" {
			t.Errorf("plain.inc altered: %q", gotPlain)
		}

		// Non-matching extension is not copied.
		if _, err := os.Stat(filepath.Join(dst, "readme.txt")); !os.IsNotExist(err) {
			t.Error("readme.txt should not be copied")
		}

		// Source untouched.
		orig, _ := os.ReadFile(filepath.Join(src, "db.inc"))
		if string(orig) != "define('DB_HOST', 'localhost');\n" {
			t.Errorf("source modified: %q", orig)
		}

		if !strings.Contains(out.String(), "Files processed: 2") {
			t.Errorf("summary missing from output:\n%s", out.String())
		}
	})

	t.Run("missing source directory is fatal", func(t *testing.T) {
		tmp := t.TempDir()
		driver, _, _ := newTestDriver()

		_, err := driver.Transform(filepath.Join(tmp, "nope"), filepath.Join(tmp, "result"), ".inc", nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "source directory not found") {
			t.Errorf("error = %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(tmp, "result")); !os.IsNotExist(statErr) {
			t.Error("result directory should not be created")
		}
	})

	t.Run("per-file failure does not abort the batch", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		dst := filepath.Join(tmp, "result")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}

		writeFile(t, filepath.Join(src, "a.inc"), "define('A', 1);\n")
		writeFile(t, filepath.Join(src, "z.inc"), "define('Z', 26);\n")
		// Make one destination unwritable by occupying its name with a dir.
		if err := os.MkdirAll(dst, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(dst, "a.inc"), 0755); err != nil {
			t.Fatal(err)
		}

		driver, _, errOut := newTestDriver()
		sum, err := driver.Transform(src, dst, ".inc", nil)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}

		if sum.FilesProcessed != 1 {
			t.Errorf("FilesProcessed = %d, want 1", sum.FilesProcessed)
		}
		if !strings.Contains(errOut.String(), "a.inc") {
			t.Errorf("failing file not reported:\n%s", errOut.String())
		}
		if _, statErr := os.Stat(filepath.Join(dst, "z.inc")); statErr != nil {
			t.Errorf("z.inc should still be transformed: %v", statErr)
		}
	})

	t.Run("empty source directory", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}

		driver, out, _ := newTestDriver()
		sum, err := driver.Transform(src, filepath.Join(tmp, "result"), ".inc", nil)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		if sum.FilesProcessed != 0 {
			t.Errorf("FilesProcessed = %d, want 0", sum.FilesProcessed)
		}
		if !strings.Contains(out.String(), "No .inc files found") {
			t.Errorf("output = %q", out.String())
		}
	})
}

func TestPreview(t *testing.T) {
	t.Run("shows first three changes and collapses the rest", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}

		content := strings.Join([]string{
			"define('A', 1);",
			"define('B', 2);",
			"define('C', 3);",
			"define('D', 4);",
			"define('E', 5);",
			"",
		}, "\n")
		writeFile(t, filepath.Join(src, "many.inc"), content)

		driver, out, _ := newTestDriver()
		sum, err := driver.Preview(src, ".inc", nil)
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		if sum.TotalChanges != 5 {
			t.Errorf("TotalChanges = %d, want 5", sum.TotalChanges)
		}
		text := out.String()
		if !strings.Contains(text, "Line 3:") {
			t.Errorf("third change missing:\n%s", text)
		}
		if strings.Contains(text, "Line 4:") {
			t.Errorf("fourth change should be collapsed:\n%s", text)
		}
		if !strings.Contains(text, "... and 2 more changes") {
			t.Errorf("remainder count missing:\n%s", text)
		}
	})

	t.Run("does not write anything", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(src, "a.inc"), "define('A', 1);\n")

		driver, _, _ := newTestDriver()
		if _, err := driver.Preview(src, ".inc", nil); err != nil {
			t.Fatalf("Preview: %v", err)
		}

		got, _ := os.ReadFile(filepath.Join(src, "a.inc"))
		if string(got) != "define('A', 1);\n" {
			t.Errorf("preview modified source: %q", got)
		}
	})

	t.Run("missing source directory is fatal", func(t *testing.T) {
		driver, _, _ := newTestDriver()
		if _, err := driver.Preview(filepath.Join(t.TempDir(), "nope"), ".inc", nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestStats(t *testing.T) {
	t.Run("aggregates per-file counters", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "src")
		if err := os.MkdirAll(src, 0755); err != nil {
			t.Fatal(err)
		}

		writeFile(t, filepath.Join(src, "a.inc"), "define('A', 1);\ndefine('B', getenv('B', 2));\n")
		writeFile(t, filepath.Join(src, "b.inc"), "define('C', 3);\n")

		driver, out, _ := newTestDriver()
		sum, err := driver.Stats(src, ".inc", nil)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}

		if sum.TotalDefines != 3 {
			t.Errorf("TotalDefines = %d, want 3", sum.TotalDefines)
		}
		if sum.GetenvDefines != 1 {
			t.Errorf("GetenvDefines = %d, want 1", sum.GetenvDefines)
		}
		if sum.TransformableDefines != 2 {
			t.Errorf("TransformableDefines = %d, want 2", sum.TransformableDefines)
		}
		if !strings.Contains(out.String(), "Overall totals:") {
			t.Errorf("totals missing:\n%s", out.String())
		}
	})
}

func TestListConfigFiles(t *testing.T) {
	t.Run("filters by extension, sorted", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"b.inc", "a.inc", "c.txt", "sub"} {
			if name == "sub" {
				if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
					t.Fatal(err)
				}
				continue
			}
			writeFile(t, filepath.Join(dir, name), "")
		}
		// Nested files are out of scope: listing is non-recursive.
		writeFile(t, filepath.Join(dir, "sub", "d.inc"), "")

		got, err := ListConfigFiles(dir, ".inc", nil)
		if err != nil {
			t.Fatalf("ListConfigFiles: %v", err)
		}
		want := []string{filepath.Join(dir, "a.inc"), filepath.Join(dir, "b.inc")}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("file[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("exclude globs", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.inc"), "")
		writeFile(t, filepath.Join(dir, "old.bak.inc"), "")

		got, err := ListConfigFiles(dir, ".inc", []string{"*.bak.inc"})
		if err != nil {
			t.Fatalf("ListConfigFiles: %v", err)
		}
		if len(got) != 1 || filepath.Base(got[0]) != "keep.inc" {
			t.Errorf("got %v, want only keep.inc", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := ListConfigFiles(filepath.Join(t.TempDir(), "nope"), ".inc", nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "source directory not found") {
			t.Errorf("error = %v", err)
		}
	})
}
