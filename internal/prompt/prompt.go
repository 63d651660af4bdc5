// Package prompt wraps document text in the analysis instruction.
package prompt

const (
	// Preamble precedes the document text.
	Preamble = "Please analyze this document and provide a comprehensive response:"
	// TruncationMarker is appended when the prompt was cut.
	TruncationMarker = "\n\n[Content truncated due to length]"
	// DefaultMaxChars bounds the prompt before the marker is added.
	DefaultMaxChars = 8000
)

// Prompt is the user message sent to the model.
type Prompt struct {
	Text          string
	Truncated     bool
	OriginalChars int
}

// Build composes Preamble, a blank line and text. Lengths are counted in
// runes; a prompt longer than maxChars keeps its first maxChars runes followed
// by TruncationMarker.
func Build(text string, maxChars int) Prompt {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	composed := Preamble + "\n\n" + text
	runes := []rune(composed)
	if len(runes) <= maxChars {
		return Prompt{Text: composed, OriginalChars: len(runes)}
	}
	return Prompt{
		Text:          string(runes[:maxChars]) + TruncationMarker,
		Truncated:     true,
		OriginalChars: len(runes),
	}
}
