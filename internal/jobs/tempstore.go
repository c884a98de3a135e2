package jobs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// tempEntry is one translated unique text with every feed row it maps back
// to, appended to the session's JSONL file as soon as its batch finishes.
// A crash mid-job leaves completed work recoverable from these files.
type tempEntry struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Rows        []int  `json:"rows"`
}

// tempStore appends per-batch results to one JSONL file per input file,
// named <session>_<fileIndex>.jsonl under its directory.
type tempStore struct {
	mu      sync.Mutex
	dir     string
	session string
}

func newTempStore(dir, session string) (*tempStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &tempStore{dir: dir, session: session}, nil
}

func (t *tempStore) path(fileIndex int) string {
	return filepath.Join(t.dir, fmt.Sprintf("%s_%d.jsonl", t.session, fileIndex))
}

func (t *tempStore) Append(fileIndex int, entry tempEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path(fileIndex), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append translation: %w", err)
	}
	return nil
}

// Load reads all entries back as a row-to-translation map. Malformed lines
// (a partial write from a crash) are skipped.
func (t *tempStore) Load(fileIndex int) (map[int]string, error) {
	translations := make(map[int]string)

	f, err := os.Open(t.path(fileIndex))
	if os.IsNotExist(err) {
		return translations, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open temp file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var entry tempEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		for _, row := range entry.Rows {
			translations[row] = entry.Translation
		}
	}
	return translations, scanner.Err()
}

// Cleanup removes every temp file of the session.
func (t *tempStore) Cleanup() {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), t.session+"_") {
			os.Remove(filepath.Join(t.dir, e.Name()))
		}
	}
}
