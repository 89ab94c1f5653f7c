package submission

import "regexp"

// The hint is advisory metadata only: spot Spanish-specific characters and
// a handful of common English words, independently, and tag the message.
var (
	spanishChars = regexp.MustCompile(`(?i)[ñáéíóúü¡¿]`)
	englishWords = regexp.MustCompile(`(?i)\b(the|and|you|your|thanks|good|best|wish)\b`)
)

// DetectLanguageHint returns a best-effort two-letter language tag for a
// message: "es", "en", "mix" when both signals fire, or "" when neither
// does or the text is empty.
func DetectLanguageHint(text string) string {
	if text == "" {
		return ""
	}

	hasES := spanishChars.MatchString(text)
	hasEN := englishWords.MatchString(text)

	switch {
	case hasES && hasEN:
		return "mix"
	case hasES:
		return "es"
	case hasEN:
		return "en"
	}
	return ""
}
