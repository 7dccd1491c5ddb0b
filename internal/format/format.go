// Package format post-processes assistant replies so they fit the limits of
// the messaging channel. Formatting is idempotent: running an already
// formatted reply through again returns it unchanged.
package format

import "strings"

// DefaultMaxChars is the reply budget for a single WhatsApp message.
const DefaultMaxChars = 1500

// truncationNotice closes a truncated reply. It counts against the budget so
// formatted output never exceeds the channel limit.
const truncationNotice = "\n\n¿Quieres que te comparta más detalles? 😊"

type Formatter struct {
	maxChars int
}

func New(maxChars int) *Formatter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Formatter{maxChars: maxChars}
}

// ForChannel normalizes whitespace, prefixes a topic emoji when the reply
// carries none, and truncates at the nearest sentence or paragraph boundary
// before the channel limit. Words and emoji are never split: truncation only
// happens at boundary runes.
func (f *Formatter) ForChannel(text string) string {
	text = NormalizeWhitespace(text)
	if text != "" && !hasEmoji(text) {
		if e := contextEmoji(text); e != "" {
			text = e + " " + text
		}
	}
	runes := []rune(text)
	if len(runes) <= f.maxChars {
		return text
	}

	notice := []rune(truncationNotice)
	budget := f.maxChars - len(notice)
	if budget <= 0 {
		return string(runes[:f.maxChars])
	}

	cut := boundaryCut(runes, budget)
	out := strings.TrimRight(string(runes[:cut]), " \n")
	return out + truncationNotice
}

// boundaryCut returns the cut position at or before budget, preferring the
// end of the last full sentence or paragraph, then the last word break.
func boundaryCut(runes []rune, budget int) int {
	last := -1
	for i := 0; i < budget && i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			last = i
		case '.', '!', '?', '…':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				last = i + 1
			}
		}
	}
	if last > 0 {
		return last
	}
	for i := budget; i > 0; i-- {
		if runes[i-1] == ' ' {
			return i - 1
		}
	}
	return budget
}

// contextEmoji picks a topic emoji from the reply content. Replies that
// match no topic stay plain.
func contextEmoji(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "financiamiento", "mensualidad", "enganche", "presupuesto", "precio"):
		return "💰"
	case containsAny(lower, "auto", "coche", "carro", "camioneta", "modelo"):
		return "🚗"
	case containsAny(lower, "garantía", "sucursal", "entrega", "cita", "prueba de manejo"):
		return "✅"
	default:
		return ""
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasEmoji reports whether the text already carries at least one emoji rune.
func hasEmoji(s string) bool {
	for _, r := range s {
		if r >= 0x1F300 || (r >= 0x2600 && r <= 0x27BF) {
			return true
		}
	}
	return false
}

// NormalizeWhitespace canonicalizes line endings, collapses space runs and
// limits consecutive blank lines to one.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimRight(line, " ")
	}
	text = strings.Join(lines, "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
