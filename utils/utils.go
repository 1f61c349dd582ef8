package utils

import (
	"fmt"
	"unicode"
)

func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// IsEnglish reports whether text is plain ASCII. The retriever uses it to
// drop non-English titles regardless of the provider's region filter.
func IsEnglish(text string) bool {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
