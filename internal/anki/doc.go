// Package anki talks to a locally running Anki instance through the
// AnkiConnect HTTP RPC interface. It provides the raw RPC client, a note
// uploader that creates or updates notes keyed by a custom ID field, and a
// small sqlite ledger that remembers which media files were already uploaded.
package anki
