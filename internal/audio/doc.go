// Package audio generates speech audio for Chinese sentences. It defines a
// small provider interface with an OpenAI TTS implementation, a Google
// Translate endpoint implementation used as fallback, and a wrapper that
// chains the two.
package audio
