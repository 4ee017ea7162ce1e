// Package models lists the OpenAI models available to the configured API
// key, so users can pick a TTS model that their account actually has access
// to before starting an upload run.
package models
