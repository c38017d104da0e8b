package tool

import "strings"

// Default truncation bounds for tool output.
const (
	DefaultMaxOutputLines = 2000
	DefaultMaxOutputBytes = 51200
)

// Limits bounds the output a tool returns to the model.
type Limits struct {
	MaxLines int
	MaxBytes int
}

// truncate applies the line limit, then the byte limit, and reports
// whether anything was cut.
func (l Limits) truncate(text string) (string, bool) {
	cut := false
	if l.MaxLines > 0 {
		lines := strings.Split(text, "\n")
		if len(lines) > l.MaxLines {
			text = strings.Join(lines[:l.MaxLines], "\n")
			cut = true
		}
	}
	if l.MaxBytes > 0 && len(text) > l.MaxBytes {
		text = strings.ToValidUTF8(text[:l.MaxBytes], "")
		cut = true
	}
	return text, cut
}
