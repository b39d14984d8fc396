// Package format shapes raw model output into display-safe strings. The
// upstream generation service is not trusted to respect length or markup
// constraints, so these functions enforce the contract regardless of what
// the model returns.
package format

import (
	"regexp"
	"strings"
)

// maxReplyLength is the hard cap on a compact reply, in characters.
const maxReplyLength = 200

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)
	bulletRe   = regexp.MustCompile(`(?m)^\* `)
	numberRe   = regexp.MustCompile(`\d\. `)
	parenRe    = regexp.MustCompile(`\d+\)`)
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.*?)\*`)
)

// Compact shapes raw generated text into a bounded reply: at most two
// sentences joined by a single space, markdown list markers rewritten to
// bullet glyphs, and a hard 200-character cut with no ellipsis. Compact is
// total; empty input yields an empty string.
func Compact(raw string) string {
	sentences := sentenceRe.FindAllString(raw, -1)
	if sentences == nil {
		sentences = []string{raw}
	}
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}

	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	out := strings.Join(kept, " ")
	out = bulletRe.ReplaceAllString(out, "• ")
	out = numberRe.ReplaceAllString(out, "◦ ")
	out = parenRe.ReplaceAllString(out, "◦")

	if runes := []rune(out); len(runes) > maxReplyLength {
		out = string(runes[:maxReplyLength])
	}
	return out
}

// Expand is the inline-markup variant used when the client renders trusted
// structured advice rather than a compact reply: newlines become line
// breaks and asterisk emphasis becomes bold/italic spans. No length cap.
func Expand(raw string) string {
	out := strings.ReplaceAll(raw, "\n", "<br/>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	return out
}
