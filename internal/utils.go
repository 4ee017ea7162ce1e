package internal

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"unicode"
)

// audioNameTextLimit caps how much of the sentence feeds the media filename.
const audioNameTextLimit = 20

// AudioFilename creates a deterministic media filename for a record so that
// re-runs produce the same name and media uploads stay idempotent.
// Format: tts_<alnum prefix>_<sha1 prefix>.mp3
func AudioFilename(id, text string) string {
	runes := []rune(text)
	if len(runes) > audioNameTextLimit {
		runes = runes[:audioNameTextLimit]
	}
	seed := id + "_" + string(runes)

	hash := sha1.Sum([]byte(seed))
	hashStr := hex.EncodeToString(hash[:])[:10]

	short := []rune{}
	for _, r := range seed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			short = append(short, r)
			if len(short) >= 12 {
				break
			}
		}
	}

	return fmt.Sprintf("tts_%s_%s.mp3", string(short), hashStr)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := ""
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			result += string(r)
		} else {
			result += "_"
		}
	}
	return result
}
