// Package history keeps an append-only log of phpenvx runs under
// .phpenvx/history.logl in the working directory. Entries form a hash chain:
// each one carries the sha256 of the previous raw line, so edits to the log
// are detectable with Verify.
package history

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	historyDir  = ".phpenvx"
	historyFile = "history.logl"
)

var (
	ErrNoHistory = errors.New("no run history found")
	mu           sync.Mutex
)

type Op string

const (
	OpTransform Op = "transform"
	OpPreview   Op = "preview"
	OpStats     Op = "stats"
	OpWatch     Op = "watch"
)

type Entry struct {
	Timestamp time.Time `json:"ts"`
	Op        Op        `json:"op"`
	RunID     string    `json:"run_id"`
	SrcDir    string    `json:"src,omitempty"`
	ResultDir string    `json:"result,omitempty"`
	Files     int       `json:"files"`
	Changes   int       `json:"changes"`
	PrevHash  string    `json:"prev_hash"`
}

type Option func(*Entry)

func WithDirs(src, result string) Option {
	return func(e *Entry) {
		e.SrcDir = src
		e.ResultDir = result
	}
}

func WithCounts(files, changes int) Option {
	return func(e *Entry) {
		e.Files = files
		e.Changes = changes
	}
}

func historyPath(workdir string) string {
	if workdir == "" {
		workdir, _ = os.Getwd()
	}
	return filepath.Join(workdir, historyDir, historyFile)
}

func lastHash(workdir string) string {
	f, err := os.Open(historyPath(workdir))
	if err != nil {
		return ""
	}
	defer f.Close()

	var lastLine string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lastLine = scanner.Text()
	}
	if lastLine == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(lastLine))
	return hex.EncodeToString(hash[:])
}

// Log appends one entry for a completed run. Each entry gets a fresh run ID.
func Log(workdir string, op Op, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	path := historyPath(workdir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ensure history dir: %w", err)
	}

	entry := &Entry{
		Timestamp: time.Now().UTC(),
		Op:        op,
		RunID:     uuid.New().String(),
		PrevHash:  lastHash(workdir),
	}
	for _, opt := range opts {
		opt(entry)
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return fmt.Errorf("write history log: %w", err)
	}
	return nil
}

// Show returns the last lastN entries, oldest first. lastN <= 0 returns all.
func Show(workdir string, lastN int) ([]Entry, error) {
	lines, err := readLines(workdir)
	if err != nil {
		return nil, err
	}

	if lastN > 0 && len(lines) > lastN {
		lines = lines[len(lines)-lastN:]
	}

	var entries []Entry
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type VerifyResult struct {
	TotalEntries int
	Breaks       []int
}

// Verify walks the chain and reports the 1-based line numbers where an
// entry's prev_hash does not match the hash of the preceding line.
func Verify(workdir string) (*VerifyResult, error) {
	lines, err := readLines(workdir)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{TotalEntries: len(lines)}
	if len(lines) == 0 {
		return result, nil
	}

	var first Entry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil || first.PrevHash != "" {
		result.Breaks = append(result.Breaks, 1)
	}

	for i := 1; i < len(lines); i++ {
		prevHash := sha256.Sum256([]byte(lines[i-1]))
		prevHashStr := hex.EncodeToString(prevHash[:])

		var entry Entry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			result.Breaks = append(result.Breaks, i+1)
			continue
		}
		if entry.PrevHash != prevHashStr {
			result.Breaks = append(result.Breaks, i+1)
		}
	}

	return result, nil
}

func readLines(workdir string) ([]string, error) {
	f, err := os.Open(historyPath(workdir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history log: %w", err)
	}
	return lines, nil
}
