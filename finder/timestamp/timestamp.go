// Package timestamp converts the free-form timestamp strings the AI echoes
// from comments ("around 2:15", "1:45-2:00", "135s") into second counts and
// builds timestamped playback URLs from them.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// Longest first so "approximately" is not mangled by the "approx" pass.
var fillerWords = []string{"approximately", "approx", "around", "onwards", "about", "mark", "ish"}

// ToSeconds converts a free-form timestamp string to a total second count.
// The second return value is false when the string carries no usable time;
// that is "no clip link available", not an error.
//
// Grammars are tried in priority order: colon-delimited (H:MM:SS / MM:SS),
// period-delimited, comma-delimited, then a bare integer taken directly as
// seconds. For a range only the portion before the first hyphen is used.
func ToSeconds(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "n/a" {
		return 0, false
	}

	for _, w := range fillerWords {
		s = strings.ReplaceAll(s, w, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "s")
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, sep := range []string{":", ".", ","} {
		if !strings.Contains(s, sep) {
			continue
		}
		if secs, ok := delimitedToSeconds(s, sep); ok {
			return secs, true
		}
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, true
	}
	return 0, false
}

// delimitedToSeconds parses 2 segments as M:SS or 3 as H:MM:SS. A segment
// that is not an integer invalidates the whole attempt.
func delimitedToSeconds(s, sep string) (int, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// ClipURL builds a playback URL that starts the video at the parsed
// timestamp. It returns "" when the timestamp cannot be converted to
// seconds, leaving the result without a clip link.
func ClipURL(videoID, ts string) string {
	secs, ok := ToSeconds(ts)
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, secs)
}
