// Package processor contains the core run logic. It loads sentence records,
// synthesizes audio per record, uploads media and notes to Anki, and writes
// the updated records back to their source files. Records are processed
// strictly one at a time; per-record failures are counted and skipped.
package processor
