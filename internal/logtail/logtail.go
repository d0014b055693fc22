package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Level is the severity parsed from a log line.
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
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file. A missing file is not an
// error; the client may not have logged anything yet.
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
	count := 0
	idx := 0
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

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ParseLevel extracts the level from a zerolog line, either console formatted
// ("12:04:05 WRN message") or JSON ({"level":"warn",...}).
func ParseLevel(line string) Level {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LevelUnknown
	}
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
			return LevelUnknown
		}
		return levelFromName(entry.Level)
	}
	for _, field := range strings.Fields(trimmed) {
		if lvl := levelFromName(field); lvl != LevelUnknown {
			return lvl
		}
	}
	return LevelUnknown
}

func levelFromName(name string) Level {
	switch strings.ToLower(name) {
	case "dbg", "debug", "trc", "trace":
		return LevelDebug
	case "inf", "info":
		return LevelInfo
	case "wrn", "warn", "warning":
		return LevelWarn
	case "err", "error", "ftl", "fatal", "pnc", "panic":
		return LevelError
	default:
		return LevelUnknown
	}
}
