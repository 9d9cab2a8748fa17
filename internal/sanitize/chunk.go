package sanitize

import "strings"

// Chunk splits text into pieces of at most limit runes. Each cut is placed
// after the last line break, space or punctuation mark found in the final
// 200 runes before the limit, or exactly at the limit when there is none.
// Joining the chunks yields the original text.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = TelegramMessageLimit
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}

		cut := limit
		for i := limit - 1; i > max(0, limit-chunkSearchWindow); i-- {
			if strings.ContainsRune(chunkBreakChars, runes[i]) {
				cut = i + 1
				break
			}
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}

	return chunks
}
