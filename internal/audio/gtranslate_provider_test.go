package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestGTranslateGenerateAudio(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":      r.URL.Query().Get("q"),
			"tl":     r.URL.Query().Get("tl"),
			"client": r.URL.Query().Get("client"),
			"ie":     r.URL.Query().Get("ie"),
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected browser user agent header")
		}
		w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	}))
	defer server.Close()

	provider := NewGTranslateProvider(&Config{Lang: "zh-CN"})
	provider.SetBaseURL(server.URL)

	outputFile := filepath.Join(t.TempDir(), "audio", "out.mp3")
	if err := provider.GenerateAudio(context.Background(), "他故意不告诉我。", outputFile); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}

	if gotQuery["q"] != "他故意不告诉我。" {
		t.Errorf("Wrong q param: %q", gotQuery["q"])
	}
	if gotQuery["tl"] != "zh-CN" {
		t.Errorf("Wrong tl param: %q", gotQuery["tl"])
	}
	if gotQuery["client"] != "tw-ob" {
		t.Errorf("Wrong client param: %q", gotQuery["client"])
	}
	if gotQuery["ie"] != "UTF-8" {
		t.Errorf("Wrong ie param: %q", gotQuery["ie"])
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("Output file not written: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("Expected 4 audio bytes, got %d", len(data))
	}
}

func TestGTranslateGenerateAudioErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		provider := NewGTranslateProvider(nil)
		provider.SetBaseURL(server.URL)

		err := provider.GenerateAudio(context.Background(), "你好", filepath.Join(t.TempDir(), "out.mp3"))
		if err == nil {
			t.Fatal("Expected error for 429 response")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		provider := NewGTranslateProvider(nil)
		provider.SetBaseURL(server.URL)

		err := provider.GenerateAudio(context.Background(), "你好", filepath.Join(t.TempDir(), "out.mp3"))
		if err == nil {
			t.Fatal("Expected error for empty audio response")
		}
	})

	t.Run("invalid text", func(t *testing.T) {
		provider := NewGTranslateProvider(nil)
		err := provider.GenerateAudio(context.Background(), "no chinese", filepath.Join(t.TempDir(), "out.mp3"))
		if err == nil {
			t.Fatal("Expected validation error")
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		provider := NewGTranslateProvider(nil)
		provider.SetBaseURL("http://127.0.0.1:1")

		err := provider.GenerateAudio(context.Background(), "你好", filepath.Join(t.TempDir(), "out.mp3"))
		if err == nil {
			t.Fatal("Expected error for unreachable endpoint")
		}
	})
}

func TestGTranslateDefaults(t *testing.T) {
	provider := NewGTranslateProvider(nil)

	if provider.Name() != "gtranslate" {
		t.Errorf("Unexpected name: %s", provider.Name())
	}
	if provider.lang != "zh-CN" {
		t.Errorf("Expected zh-CN default lang, got %s", provider.lang)
	}
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("Expected gtranslate to always be available, got %v", err)
	}
}
