package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	InputDir   string
	TempDir    string
	DryRun     bool
	ListModels bool
	RateSleep  float64

	// Anki flags
	AnkiURL string
	Deck    string
	Model   string

	// Audio flags
	AudioProvider string
	TTSLang       string

	// OpenAI flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		InputDir:      "input",
		RateSleep:     0.4,
		AnkiURL:       "http://127.0.0.1:8765",
		AudioProvider: "openai",
		TTSLang:       "zh-CN",
		OpenAIModel:   "gpt-4o-mini-tts",
		OpenAIVoice:   "alloy",
		OpenAISpeed:   1.0,
	}
}
