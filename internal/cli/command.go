package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TF338/upload-anki-tts/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ankitts",
		Short: "TTS uploader for Anki sentence decks",
		Long: `ankitts reads JSON files of Chinese sentences, synthesizes speech
audio for each one, and pushes notes plus audio into a locally running Anki
through the AnkiConnect add-on.

Notes are matched by their ID field, so re-running the tool updates existing
cards instead of duplicating them.

Examples:
  ankitts                         # Process ./input and upload to Anki
  ankitts --input decks/hsk4      # Process a different directory
  ankitts --dry-run               # Synthesize audio only, write .dryrun.json previews`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ankitts.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputDir, "input", "i", flags.InputDir, "Directory of JSON record files")
	cmd.Flags().StringVar(&flags.TempDir, "temp-dir", "", "Directory for synthesized audio (default is a per-user temp dir)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Do not upload to Anki or modify input files (writes .dryrun.json previews)")
	cmd.Flags().Float64Var(&flags.RateSleep, "rate-sleep", flags.RateSleep, "Seconds to sleep between records to respect TTS rate limits")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")

	// Anki flags
	cmd.Flags().StringVar(&flags.AnkiURL, "anki-url", flags.AnkiURL, "AnkiConnect endpoint URL")
	cmd.Flags().StringVar(&flags.Deck, "deck", "", "Target deck name")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Note model (note type) name")

	// Audio flags
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Primary TTS provider: openai or gtranslate")
	cmd.Flags().StringVar(&flags.TTSLang, "tts-lang", flags.TTSLang, "Language code sent to the TTS endpoint")

	// OpenAI flags
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, shimmer, ...")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("input.directory", cmd.Flags().Lookup("input"))
	viper.BindPFlag("temp_dir", cmd.Flags().Lookup("temp-dir"))
	viper.BindPFlag("rate_sleep", cmd.Flags().Lookup("rate-sleep"))
	viper.BindPFlag("anki.url", cmd.Flags().Lookup("anki-url"))
	viper.BindPFlag("anki.deck", cmd.Flags().Lookup("deck"))
	viper.BindPFlag("anki.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("audio.provider", cmd.Flags().Lookup("audio-provider"))
	viper.BindPFlag("audio.lang", cmd.Flags().Lookup("tts-lang"))
	viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", cmd.Flags().Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", cmd.Flags().Lookup("openai-instruction"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ankitts" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ankitts")
	}

	// Environment variables
	viper.SetEnvPrefix("ANKITTS")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("audio.openai_key")
}
