package anki

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/TF338/upload-anki-tts/internal/card"
)

// IDField is the note field holding the caller-assigned record identifier.
// It is what makes create-or-update idempotent across runs.
const IDField = "ID"

// UploaderConfig maps record fields onto the note model of the target deck
type UploaderConfig struct {
	Deck         string
	Model        string
	FieldChinese string
	FieldEnglish string
	FieldPinyin  string
	FieldSound   string
}

// Validate checks that the required mapping keys are present
func (c *UploaderConfig) Validate() error {
	if c.Deck == "" || c.Model == "" || c.FieldChinese == "" || c.FieldEnglish == "" {
		return fmt.Errorf("config missing required keys: deck, model, field_chinese, field_english")
	}
	return nil
}

// Uploader pushes synthesized audio and note content into Anki
type Uploader struct {
	client *Client
	ledger *Ledger // nil disables upload bookkeeping
	config UploaderConfig
}

// NewUploader creates an uploader for the given client and field mapping
func NewUploader(client *Client, ledger *Ledger, config UploaderConfig) *Uploader {
	return &Uploader{
		client: client,
		ledger: ledger,
		config: config,
	}
}

// StoreMedia uploads the audio file under filename into Anki's media
// collection. Files already present in the ledger are skipped.
func (u *Uploader) StoreMedia(ctx context.Context, filename, path string) error {
	if u.ledger != nil {
		uploaded, err := u.ledger.Has(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if uploaded {
			fmt.Printf("  Media %s already uploaded, skipping\n", filename)
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	if err := u.client.StoreMediaFile(ctx, filename, data); err != nil {
		return err
	}

	if u.ledger != nil {
		if err := u.ledger.Record(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

// UpsertNote creates a note for the record or updates the existing one with
// the same ID field. It returns the note ID and whether a note was created.
func (u *Uploader) UpsertNote(ctx context.Context, rec *card.SentenceRecord) (card.NoteID, bool, error) {
	fields := u.noteFields(rec)

	query := fmt.Sprintf("\"%s:%s\"", IDField, rec.ID)
	ids, err := u.client.FindNotes(ctx, query)
	if err != nil {
		return "", false, err
	}

	if len(ids) > 0 {
		if err := u.client.UpdateNote(ctx, ids[0], fields, rec.Tags); err != nil {
			return "", false, err
		}
		return card.NoteID(strconv.FormatInt(ids[0], 10)), false, nil
	}

	id, err := u.client.AddNote(ctx, Note{
		DeckName:  u.config.Deck,
		ModelName: u.config.Model,
		Fields:    fields,
		Tags:      rec.Tags,
	})
	if err != nil {
		return "", false, err
	}
	return card.NoteID(strconv.FormatInt(id, 10)), true, nil
}

// noteFields maps record fields onto the configured note model
func (u *Uploader) noteFields(rec *card.SentenceRecord) map[string]string {
	fields := map[string]string{
		u.config.FieldChinese: rec.Chinese,
		u.config.FieldEnglish: rec.English,
		IDField:               rec.ID,
	}
	if u.config.FieldPinyin != "" {
		fields[u.config.FieldPinyin] = rec.Pinyin
	}
	if u.config.FieldSound != "" && rec.AudioFilename != "" {
		fields[u.config.FieldSound] = "[sound:" + rec.AudioFilename + "]"
	}
	return fields
}
