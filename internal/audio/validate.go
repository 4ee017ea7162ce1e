package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateChineseText performs basic validation of Chinese sentence text
func ValidateChineseText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	// Check if text contains at least one Han character
	hasHan := false
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			hasHan = true
			break
		}
	}

	if !hasHan {
		return fmt.Errorf("text must contain Chinese characters")
	}

	return nil
}
