package sanitize

import "regexp"

const (
	// InferenceMaxLength caps what is ever sent to the model, independent of
	// the user-facing message limit.
	InferenceMaxLength = 4000

	// TelegramMessageLimit is the largest text Telegram accepts in one message.
	TelegramMessageLimit = 4096

	chunkSearchWindow = 200
	chunkBreakChars   = "\n .,!?;:"
)

var (
	// C0 controls except tab, LF and CR, plus DEL and the C1 block.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F\x{80}-\x{9F}]`)

	// Applied in order, each anchored at the start of the text.
	injectionPrefixRegexps = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/system\s*:?\s*`),
		regexp.MustCompile(`(?i)^/prompt\s*:?\s*`),
		regexp.MustCompile(`(?i)^\[system\]`),
		regexp.MustCompile(`(?i)^(system|assistant|user)\s*:\s*`),
	}
)
