package telegram

import "strings"

// messageLimit — максимальная длина сообщения Telegram в символах.
const messageLimit = 4096

// splitLines делит текст на части не длиннее limit символов.
// Разрез идёт по границам строк, слишком длинная строка режется по limit.
func splitLines(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = messageLimit
	}

	var (
		parts []string
		cur   []rune
	)
	flush := func() {
		if chunk := strings.Trim(string(cur), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		cur = cur[:0]
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if len(cur)+len(runes) <= limit {
			cur = append(cur, runes...)
			continue
		}
		flush()
		for len(runes) > limit {
			cur = append(cur, runes[:limit]...)
			flush()
			runes = runes[limit:]
		}
		cur = append(cur, runes...)
	}
	flush()
	return parts
}
