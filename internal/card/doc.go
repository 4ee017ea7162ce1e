// Package card defines the sentence record model and the file I/O around it.
// It loads record lists from a directory of JSON files, keeps track of which
// file each record came from, and writes updated records back to their source
// file (or to a backup/dry-run sibling).
package card
