package ui

import "strings"

const ellipsis = "…"

// truncate shortens a string to limit runes, ending in an ellipsis when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return string(runes[:1])
	}
	return strings.TrimRight(string(runes[:limit-1]), " ") + ellipsis
}

// truncateMiddle shortens a string by cutting its middle. URLs and paths
// keep their file extension, e.g. ".../pg1342.cover…medium.jpg".
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	if lastSlash := strings.LastIndex(value, "/"); lastSlash >= 0 {
		lastDot := strings.LastIndex(value, ".")
		if lastDot > lastSlash {
			ext := []rune(value[lastDot:])
			base := []rune(value[:lastDot])
			baseLimit := limit - len(ext) - 1
			if len(ext) < 10 && len(ext) < limit/2 && baseLimit > 1 {
				prefix := baseLimit / 2
				suffix := baseLimit - prefix
				return string(base[:prefix]) + ellipsis + string(base[len(base)-suffix:]) + string(ext)
			}
		}
	}

	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + ellipsis + string(runes[len(runes)-suffix:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}
