package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	backupSuffix = ".bak.json"
	dryRunSuffix = ".dryrun.json"
)

// Persister writes updated record files back to disk. In normal mode the
// source file is replaced after being renamed to a .bak.json backup; in
// dry-run mode a .dryrun.json sibling is written and the source is left
// untouched.
type Persister struct {
	DryRun bool
}

// NewPersister creates a persister for the given mode
func NewPersister(dryRun bool) *Persister {
	return &Persister{DryRun: dryRun}
}

// Save writes the file's records to their destination and returns the path
// that was written. Files that no run step touched are left alone.
func (p *Persister) Save(f *File) (string, error) {
	data, err := marshalRecords(f.Records)
	if err != nil {
		return "", fmt.Errorf("failed to encode records for %s: %w", f.Path, err)
	}

	if p.DryRun {
		out := replaceJSONSuffix(f.Path, dryRunSuffix)
		if err := os.WriteFile(out, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write dry-run file: %w", err)
		}
		return out, nil
	}

	// Keep the original as a backup before overwriting it
	backup := replaceJSONSuffix(f.Path, backupSuffix)
	if _, err := os.Stat(f.Path); err == nil {
		if err := os.Rename(f.Path, backup); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", f.Path, err)
		}
	}

	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return f.Path, nil
}

// marshalRecords encodes records as indented JSON without escaping non-ASCII
// text, so Chinese sentences stay readable in the output files.
func marshalRecords(records []*SentenceRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replaceJSONSuffix swaps the .json extension for the given suffix
func replaceJSONSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, ".json") + suffix
}
