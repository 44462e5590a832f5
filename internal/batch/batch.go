// Package batch runs the define() transform over a directory of config
// files. Each file is processed independently: a failure on one file is
// reported and the rest of the batch continues. Only a missing source
// directory aborts a run.
package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rkhozinov/php-config-transofrmer/internal/transformer"
	"github.com/rkhozinov/php-config-transofrmer/internal/tui"
)

// previewLimit is how many changes per file the preview mode prints before
// collapsing the rest into a count.
const previewLimit = 3

type Driver struct {
	tr     *transformer.Transformer
	out    io.Writer
	errOut io.Writer
}

func NewDriver(out, errOut io.Writer) *Driver {
	return &Driver{
		tr:     transformer.New(),
		out:    out,
		errOut: errOut,
	}
}

// Summary aggregates one run over a directory.
type Summary struct {
	FilesProcessed   int
	FilesWithChanges int
	TotalChanges     int
}

// StatsSummary aggregates the per-file counters of a stats run.
type StatsSummary struct {
	FilesProcessed       int
	TotalDefines         int
	GetenvDefines        int
	TransformableDefines int
}

// Transform copies each matching file from src into dst and rewrites the
// copy in place. Originals are never touched; files without matches end up
// byte-identical in dst.
func (d *Driver) Transform(src, dst, ext string, exclude []string) (Summary, error) {
	var sum Summary

	files, err := ListConfigFiles(src, ext, exclude)
	if err != nil {
		return sum, err
	}
	if len(files) == 0 {
		fmt.Fprintf(d.out, "No %s files found in %s\n", ext, src)
		return sum, nil
	}

	if err := ensureDir(dst); err != nil {
		return sum, err
	}

	fmt.Fprintln(d.out, tui.Header(fmt.Sprintf("Transforming files from %s to %s:", src, dst)))
	fmt.Fprintln(d.out, strings.Repeat("=", 50))

	for _, file := range files {
		name := filepath.Base(file)
		dstFile := filepath.Join(dst, name)

		changes, err := d.transformOne(file, dstFile)
		if err != nil {
			fmt.Fprintf(d.errOut, "%s %s: error - %v\n", tui.Error("✗"), name, err)
			continue
		}

		if len(changes) > 0 {
			sum.FilesWithChanges++
			sum.TotalChanges += len(changes)
			fmt.Fprintf(d.out, "%s %s: %d changes\n", tui.Success("✓"), name, len(changes))
		} else {
			fmt.Fprintf(d.out, "%s %s: no changes needed\n", tui.Muted("-"), name)
		}
		sum.FilesProcessed++
	}

	fmt.Fprintf(d.out, "\n%s\n", tui.Label("Summary:"))
	fmt.Fprintf(d.out, "  Files processed: %d\n", sum.FilesProcessed)
	fmt.Fprintf(d.out, "  Files with changes: %d\n", sum.FilesWithChanges)
	fmt.Fprintf(d.out, "  Total transformations: %d\n", sum.TotalChanges)

	return sum, nil
}

func (d *Driver) transformOne(src, dst string) ([]transformer.Change, error) {
	if err := copyFile(src, dst); err != nil {
		return nil, err
	}
	return d.tr.RewriteFile(dst)
}

// Preview prints the changes a transform run would make without writing
// anything. Only the first few changes per file are shown.
func (d *Driver) Preview(src, ext string, exclude []string) (Summary, error) {
	var sum Summary

	files, err := ListConfigFiles(src, ext, exclude)
	if err != nil {
		return sum, err
	}
	if len(files) == 0 {
		fmt.Fprintf(d.out, "No %s files found in %s\n", ext, src)
		return sum, nil
	}

	fmt.Fprintln(d.out, tui.Header(fmt.Sprintf("Preview of transformations from %s:", src)))
	fmt.Fprintln(d.out, strings.Repeat("=", 60))

	for _, file := range files {
		name := filepath.Base(file)

		changes, err := d.tr.ScanFile(file)
		if err != nil {
			fmt.Fprintf(d.errOut, "\n%s %s: error - %v\n", tui.Error("✗"), name, err)
			continue
		}
		sum.FilesProcessed++

		if len(changes) == 0 {
			fmt.Fprintf(d.out, "\n%s: no changes needed\n", name)
			continue
		}

		sum.FilesWithChanges++
		sum.TotalChanges += len(changes)
		fmt.Fprintf(d.out, "\n%s: %d changes\n", tui.Label(name), len(changes))
		for i, change := range changes {
			if i == previewLimit {
				fmt.Fprintf(d.out, "  %s\n", tui.Muted(fmt.Sprintf("... and %d more changes", len(changes)-previewLimit)))
				break
			}
			fmt.Fprintf(d.out, "  %s %s\n", tui.LineNumber(fmt.Sprintf("Line %d:", change.LineNumber)), change.Transformed)
		}
	}

	fmt.Fprintf(d.out, "\nTotal transformations: %d\n", sum.TotalChanges)
	return sum, nil
}

// Stats prints per-file and overall define() counters for src.
func (d *Driver) Stats(src, ext string, exclude []string) (StatsSummary, error) {
	var sum StatsSummary

	files, err := ListConfigFiles(src, ext, exclude)
	if err != nil {
		return sum, err
	}
	if len(files) == 0 {
		fmt.Fprintf(d.out, "No %s files found in %s\n", ext, src)
		return sum, nil
	}

	fmt.Fprintln(d.out, tui.Header(fmt.Sprintf("Statistics for %s:", src)))
	fmt.Fprintln(d.out, strings.Repeat("=", 40))

	for _, file := range files {
		name := filepath.Base(file)

		stats, err := d.tr.FileStats(file)
		if err != nil {
			fmt.Fprintf(d.errOut, "\n%s %s: error - %v\n", tui.Error("✗"), name, err)
			continue
		}
		sum.FilesProcessed++
		sum.TotalDefines += stats.TotalDefines
		sum.GetenvDefines += stats.GetenvDefines
		sum.TransformableDefines += stats.TransformableDefines

		fmt.Fprintf(d.out, "\n%s:\n", tui.Label(name))
		fmt.Fprintf(d.out, "  Total defines: %d\n", stats.TotalDefines)
		fmt.Fprintf(d.out, "  Already using getenv(): %d\n", stats.GetenvDefines)
		fmt.Fprintf(d.out, "  Transformable: %d\n", stats.TransformableDefines)
	}

	fmt.Fprintf(d.out, "\n%s\n", tui.Label("Overall totals:"))
	fmt.Fprintf(d.out, "  Total defines: %d\n", sum.TotalDefines)
	fmt.Fprintf(d.out, "  Already using getenv(): %d\n", sum.GetenvDefines)
	fmt.Fprintf(d.out, "  Transformable: %d\n", sum.TransformableDefines)

	return sum, nil
}
