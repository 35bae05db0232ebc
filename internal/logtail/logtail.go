package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count < maxLines {
		return append([]string(nil), ring[:count]...), nil
	}
	lines := make([]string, 0, count)
	lines = append(lines, ring[idx:]...)
	return append(lines, ring[:idx]...), nil
}

// Level is a normalized log severity.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// Entry is one parsed line of folio's log file, e.g.
//
//	2026-03-01 10:00:00 WARN gutendex: circuit breaker state changed from=closed to=open
type Entry struct {
	Raw       string
	Timestamp string
	Level     Level
	Component string
	Message   string
	Fields    string
}

// Parse splits a text-formatted log line. Lines that do not look like log
// records come back with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 3 || !looksLikeDate(parts[0]) {
		return entry
	}
	level := parseLevel(parts[2])
	if level == LevelUnknown {
		return entry
	}
	entry.Timestamp = parts[0] + " " + parts[1]
	entry.Level = level

	rest := ""
	if len(parts) == 4 {
		rest = parts[3]
	}
	if head, tail, ok := strings.Cut(rest, ": "); ok && !strings.ContainsAny(head, " =") {
		entry.Component = head
		rest = tail
	}
	entry.Message, entry.Fields = splitFields(rest)
	return entry
}

// Filter keeps lines at or above minLevel whose text contains query
// (case-insensitive). Unparsed lines are kept only when minLevel is
// LevelUnknown.
func Filter(lines []string, minLevel Level, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry := Parse(line)
		if minLevel != LevelUnknown && entry.Level < minLevel {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(line), query) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func parseLevel(token string) Level {
	switch strings.ToUpper(token) {
	case "DEBU", "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERRO", "ERROR", "FATA", "FATAL":
		return LevelError
	default:
		return LevelUnknown
	}
}

func looksLikeDate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			if r != '-' {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitFields separates trailing key=value pairs from the message.
func splitFields(rest string) (string, string) {
	words := strings.Fields(rest)
	cut := len(words)
	for cut > 0 && isField(words[cut-1]) {
		cut--
	}
	if cut == len(words) {
		return strings.TrimSpace(rest), ""
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}

func isField(word string) bool {
	key, _, ok := strings.Cut(word, "=")
	return ok && key != "" && !strings.ContainsAny(key, `"'`)
}
