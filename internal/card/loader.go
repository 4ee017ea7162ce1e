package card

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File groups the records loaded from a single input file so that updated
// records can be written back to where they came from.
type File struct {
	Path    string
	Records []*SentenceRecord

	// Dirty is set by the processor once any record in this file changed.
	Dirty bool
}

// LoadDirectory reads every *.json file in dir and parses each as a list of
// sentence records. A file that cannot be parsed is skipped with a warning;
// only an unreadable directory is a hard error since then no progress is
// possible.
func LoadDirectory(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Artifacts of previous runs are not input
		if strings.HasSuffix(name, backupSuffix) || strings.HasSuffix(name, dryRunSuffix) {
			continue
		}
		if filepath.Ext(name) == ".json" {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	var files []*File
	for _, path := range paths {
		file, err := loadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", path, err)
			continue
		}
		files = append(files, file)
	}

	return files, nil
}

// loadFile parses a single input file as a JSON array of records
func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var records []*SentenceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("not a JSON list of records: %w", err)
	}

	return &File{Path: path, Records: records}, nil
}

// CountRecords returns the total number of records across all files
func CountRecords(files []*File) int {
	total := 0
	for _, f := range files {
		total += len(f.Records)
	}
	return total
}
