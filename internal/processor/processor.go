package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/TF338/upload-anki-tts/internal"
	"github.com/TF338/upload-anki-tts/internal/anki"
	"github.com/TF338/upload-anki-tts/internal/audio"
	"github.com/TF338/upload-anki-tts/internal/card"
	"github.com/TF338/upload-anki-tts/internal/cli"
)

// Stats tracks per-run counters for the summary report
type Stats struct {
	Total         int
	Created       int
	Updated       int
	SkippedNoText int
	ReusedAudio   int
	Failed        int
}

// Processor handles one upload run
type Processor struct {
	flags       *cli.Flags
	inputDir    string
	provider    audio.Provider
	client      *anki.Client
	uploader    *anki.Uploader
	ledger      *anki.Ledger
	persister   *card.Persister
	tempDir     string
	defaultTags []string
	rateSleep   time.Duration

	stats Stats
}

// stringSetting resolves a config key against its flag value. Viper wins when
// the key was set via config file, environment, or an explicitly passed flag;
// otherwise the flag default applies.
func stringSetting(key, flagValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return flagValue
}

func floatSetting(key string, flagValue float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return flagValue
}

// NewProcessor assembles a processor from flags and viper configuration.
// Missing deck/model/field mapping is a configuration error.
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	uploaderConfig := anki.UploaderConfig{
		Deck:         stringSetting("anki.deck", flags.Deck),
		Model:        stringSetting("anki.model", flags.Model),
		FieldChinese: viper.GetString("anki.field_chinese"),
		FieldEnglish: viper.GetString("anki.field_english"),
		FieldPinyin:  viper.GetString("anki.field_pinyin"),
		FieldSound:   viper.GetString("anki.field_sound"),
	}
	if err := uploaderConfig.Validate(); err != nil {
		return nil, err
	}

	provider, err := buildProvider(flags)
	if err != nil {
		return nil, err
	}

	tempDir := stringSetting("temp_dir", flags.TempDir)
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "ankitts_media")
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	client := anki.NewClient(stringSetting("anki.url", flags.AnkiURL))

	// The ledger only matters when media actually gets uploaded
	var ledger *anki.Ledger
	if !flags.DryRun {
		if path := ledgerPath(); path != "" {
			ledger, err = anki.OpenLedger(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: media ledger disabled: %v\n", err)
				ledger = nil
			}
		}
	}

	defaultTags := viper.GetStringSlice("default_tags")
	if defaultTags == nil {
		defaultTags = []string{"generated"}
	}

	rateSleep := floatSetting("rate_sleep", flags.RateSleep)

	return &Processor{
		flags:       flags,
		inputDir:    stringSetting("input.directory", flags.InputDir),
		provider:    provider,
		client:      client,
		uploader:    anki.NewUploader(client, ledger, uploaderConfig),
		ledger:      ledger,
		persister:   card.NewPersister(flags.DryRun),
		tempDir:     tempDir,
		defaultTags: defaultTags,
		rateSleep:   time.Duration(rateSleep * float64(time.Second)),
	}, nil
}

// buildProvider creates the primary TTS provider and chains the Google
// Translate endpoint behind it as fallback.
func buildProvider(flags *cli.Flags) (audio.Provider, error) {
	providerConfig := &audio.Config{
		Provider:          stringSetting("audio.provider", flags.AudioProvider),
		Lang:              stringSetting("audio.lang", flags.TTSLang),
		OpenAIKey:         cli.GetOpenAIKey(),
		OpenAIModel:       stringSetting("audio.openai_model", flags.OpenAIModel),
		OpenAIVoice:       stringSetting("audio.openai_voice", flags.OpenAIVoice),
		OpenAISpeed:       floatSetting("audio.openai_speed", flags.OpenAISpeed),
		OpenAIInstruction: stringSetting("audio.openai_instruction", flags.OpenAIInstruction),
	}

	primary, err := audio.NewProvider(providerConfig)
	if err != nil {
		return nil, err
	}

	if providerConfig.Provider == "gtranslate" {
		// Already the provider of last resort
		return primary, nil
	}

	fallback := audio.NewGTranslateProvider(providerConfig)
	return audio.NewProviderWithFallback(primary, fallback), nil
}

// ledgerPath returns the media ledger location. Setting anki.ledger to an
// empty string in the config disables the ledger.
func ledgerPath() string {
	if viper.IsSet("anki.ledger") {
		return viper.GetString("anki.ledger")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "ankitts", "media_ledger.db")
}

// Run executes one full upload run. Only an unreadable input directory, a
// broken configuration, or an unreachable AnkiConnect endpoint are fatal;
// everything else is counted and skipped.
func (p *Processor) Run(ctx context.Context) error {
	files, err := card.LoadDirectory(p.inputDir)
	if err != nil {
		return err
	}

	p.stats.Total = card.CountRecords(files)
	fmt.Printf("Loaded %d records from %d files\n", p.stats.Total, len(files))

	if !p.flags.DryRun {
		if err := p.client.Ping(ctx); err != nil {
			return err
		}
	}

	runErr := p.processFiles(ctx, files)

	// Persist whatever the run managed to update, even on abort
	p.persist(files)
	p.printSummary()

	if p.ledger != nil {
		p.ledger.Close()
	}

	return runErr
}

// processFiles walks all records in order. A record failure moves on to the
// next record; an open circuit to AnkiConnect aborts the run.
func (p *Processor) processFiles(ctx context.Context, files []*card.File) error {
	index := 0
	for _, f := range files {
		for _, rec := range f.Records {
			index++

			fmt.Printf("\nProcessing %d/%d: %s\n", index, p.stats.Total, rec.ID)

			if !rec.HasText() {
				// Skipped records round-trip unchanged, so no ID
				// assignment or tag defaulting
				fmt.Printf("  Skipping: record has no 'chinese' field\n")
				p.stats.SkippedNoText++
				continue
			}

			if rec.ID == "" {
				// Caller forgot the idempotency key; derive a stable
				// positional one so re-runs still match.
				rec.ID = fmt.Sprintf("idx%d", index)
				f.Dirty = true
			}

			if rec.Tags == nil {
				rec.EnsureTags(p.defaultTags)
				f.Dirty = true
			}

			if err := p.processRecord(ctx, f, rec); err != nil {
				if anki.IsCircuitOpen(err) {
					return fmt.Errorf("AnkiConnect endpoint unreachable, aborting run: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", rec.ID, err)
				p.stats.Failed++
				continue
			}

			time.Sleep(p.rateSleep)
		}
	}
	return nil
}

// processRecord synthesizes audio for one record and pushes it to Anki
func (p *Processor) processRecord(ctx context.Context, f *card.File, rec *card.SentenceRecord) error {
	needsAudio := rec.AudioFilename == ""

	var audioPath string
	if needsAudio {
		filename := internal.AudioFilename(rec.ID, rec.Chinese)
		audioPath = filepath.Join(p.tempDir, filename)

		fmt.Printf("  Generating audio (%s)...\n", p.provider.Name())
		if err := p.provider.GenerateAudio(ctx, rec.Chinese, audioPath); err != nil {
			return fmt.Errorf("audio generation failed: %w", err)
		}

		rec.AudioFilename = filename
		f.Dirty = true
	} else {
		fmt.Printf("  Audio already generated: %s\n", rec.AudioFilename)
		p.stats.ReusedAudio++
	}

	if p.flags.DryRun {
		fmt.Printf("  [dry-run] would upload %s and create/update note %s\n", rec.AudioFilename, rec.ID)
		rec.AnkiNoteID = card.NoteID("dry_run_" + rec.ID)
		f.Dirty = true
		return nil
	}

	if needsAudio {
		fmt.Printf("  Uploading media %s...\n", rec.AudioFilename)
		if err := p.uploader.StoreMedia(ctx, rec.AudioFilename, audioPath); err != nil {
			return err
		}
	}

	noteID, created, err := p.uploader.UpsertNote(ctx, rec)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("  Created note %s (ID %s)\n", rec.ID, noteID)
		p.stats.Created++
	} else {
		fmt.Printf("  Updated note %s (ID %s)\n", rec.ID, noteID)
		p.stats.Updated++
	}

	if rec.AnkiNoteID != noteID {
		rec.AnkiNoteID = noteID
		f.Dirty = true
	}

	return nil
}

// persist writes every file a run step touched back to disk
func (p *Processor) persist(files []*card.File) {
	for _, f := range files {
		if !f.Dirty {
			continue
		}
		path, err := p.persister.Save(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving %s: %v\n", f.Path, err)
			continue
		}
		fmt.Printf("Saved %s\n", path)
	}
}

// printSummary prints the per-run counters
func (p *Processor) printSummary() {
	fmt.Printf("\n=== Upload Summary ===\n")
	fmt.Printf("Total records: %d\n", p.stats.Total)
	fmt.Printf("Created notes: %d\n", p.stats.Created)
	fmt.Printf("Updated notes: %d\n", p.stats.Updated)
	if p.stats.ReusedAudio > 0 {
		fmt.Printf("Reused audio:  %d\n", p.stats.ReusedAudio)
	}
	if p.stats.SkippedNoText > 0 {
		fmt.Printf("Skipped (no text): %d\n", p.stats.SkippedNoText)
	}
	if p.stats.Failed > 0 {
		fmt.Printf("Failed: %d\n", p.stats.Failed)
	}
	fmt.Printf("======================\n")
}

// StatsSnapshot returns a copy of the current counters
func (p *Processor) StatsSnapshot() Stats {
	return p.stats
}
