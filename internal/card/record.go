package card

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NoteID holds the flashcard application's note identifier. AnkiConnect
// returns numeric IDs while dry runs write dry_run_<id> markers, so the field
// accepts both JSON numbers and strings.
type NoteID string

// UnmarshalJSON implements json.Unmarshaler
func (n *NoteID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NoteID(s)
		return nil
	}

	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	*n = NoteID(strconv.FormatInt(i, 10))
	return nil
}

// TagList decodes leniently: a tags value that is not a list of strings is
// treated as absent, so one malformed record does not sink the whole file.
// Records whose tags were dropped this way pick up the default tags.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler
func (t *TagList) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		*t = nil
		return nil
	}
	*t = tags
	return nil
}

// SentenceRecord is one flashcard-worth of input: a Chinese sentence with its
// pinyin and English translation. ID is caller-assigned and acts as the
// idempotency key when the record is pushed to Anki.
type SentenceRecord struct {
	ID            string  `json:"id"`
	Chinese       string  `json:"chinese"`
	Pinyin        string  `json:"pinyin,omitempty"`
	English       string  `json:"english,omitempty"`
	Tags          TagList `json:"tags,omitempty"`
	AudioFilename string  `json:"audio_filename,omitempty"`
	AnkiNoteID    NoteID  `json:"anki_note_id,omitempty"`
}

// HasText reports whether the record carries the source sentence. Records
// without it are skipped by the processor and round-trip unchanged.
func (r *SentenceRecord) HasText() bool {
	return strings.TrimSpace(r.Chinese) != ""
}

// EnsureTags sets the default tag list on records that arrived without one.
func (r *SentenceRecord) EnsureTags(defaults []string) {
	if r.Tags == nil {
		r.Tags = append(TagList{}, defaults...)
	}
}
