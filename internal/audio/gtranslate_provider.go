package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultGTranslateURL is the unofficial Google Translate TTS endpoint. It
// serves small requests without an API key but may be rate limited, which is
// why it is only used as the fallback provider.
const DefaultGTranslateURL = "https://translate.google.com/translate_tts"

const gtranslateTimeout = 30 * time.Second

// GTranslateProvider implements Provider using the Google Translate TTS endpoint
type GTranslateProvider struct {
	baseURL    string
	lang       string
	httpClient *http.Client
}

// NewGTranslateProvider creates a new Google Translate TTS provider
func NewGTranslateProvider(config *Config) *GTranslateProvider {
	lang := "zh-CN"
	if config != nil && config.Lang != "" {
		lang = config.Lang
	}

	return &GTranslateProvider{
		baseURL:    DefaultGTranslateURL,
		lang:       lang,
		httpClient: &http.Client{Timeout: gtranslateTimeout},
	}
}

// SetBaseURL overrides the endpoint URL, used in tests
func (p *GTranslateProvider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// GenerateAudio fetches MP3 audio for the text and saves it to outputFile
func (p *GTranslateProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateChineseText(text); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", p.lang)
	params.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build TTS request: %w", err)
	}

	// The endpoint rejects requests without a browser-looking user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.96 Safari/537.36")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Google Translate TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Google Translate TTS returned status %d", resp.StatusCode)
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if written == 0 {
		return fmt.Errorf("no audio data received from Google Translate")
	}

	return nil
}

// Name returns the provider name
func (p *GTranslateProvider) Name() string {
	return "gtranslate"
}

// IsAvailable checks if the provider can be used
func (p *GTranslateProvider) IsAvailable() error {
	// No credentials needed; reachability is only known at request time
	return nil
}
