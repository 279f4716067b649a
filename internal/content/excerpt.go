package content

import "strings"

// Excerpt returns whole leading sentences of text up to maxWords words. If
// the first sentence alone is longer, it is cut at maxWords and ends with "…".
func Excerpt(text string, maxWords int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxWords <= 0 || text == "" {
		return text
	}

	var out []string
	words := 0
	for _, sent := range splitSentences(text) {
		n := len(strings.Fields(sent))
		if words+n > maxWords {
			break
		}
		out = append(out, sent)
		words += n
	}
	if len(out) > 0 {
		return strings.Join(out, " ")
	}

	fields := strings.Fields(text)
	return strings.Join(fields[:maxWords], " ") + "…"
}

// ReadingMinutes estimates reading time at 200 words per minute, at least 1.
func ReadingMinutes(text string) int {
	words := len(strings.Fields(text))
	return max(1, (words+199)/200)
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
