// Package sanitize provides the text transformations applied to user input
// before it is displayed, sent to the inference server or written to the
// audit log, and the splitting of replies into Telegram-sized chunks.
package sanitize

import (
	"strings"
)

var logReplacer = strings.NewReplacer("\n", `\n`, "\r", `\r`)

// ForDisplay removes control characters (tab and line breaks are kept),
// truncates to maxLen runes and trims surrounding whitespace.
// An empty result means the message carries nothing usable.
func ForDisplay(text string, maxLen int) string {
	if text == "" {
		return ""
	}

	s := controlCharsRegex.ReplaceAllString(text, "")
	s = truncateRunes(s, maxLen)

	return strings.TrimSpace(s)
}

// ForInference strips leading role and instruction prefixes a user could use
// to impersonate the system prompt, drops NUL bytes and caps the length at
// InferenceMaxLength runes.
func ForInference(text string) string {
	if text == "" {
		return ""
	}

	s := text
	for _, re := range injectionPrefixRegexps {
		s = re.ReplaceAllString(s, "")
	}

	s = strings.ReplaceAll(s, "\x00", "")

	return truncateRunes(s, InferenceMaxLength)
}

// ForLog escapes line breaks so one audit entry always stays on one line.
func ForLog(text string) string {
	if text == "" {
		return ""
	}
	return logReplacer.Replace(text)
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i]
		}
		n++
	}

	return s
}
