package pacing

import (
	"strings"
	"time"
)

// WordsPerMinute is a comfortable speaking rate for a talk.
const WordsPerMinute = 130

// SpeakingTime estimates how long text takes to say aloud, rounded to the
// second. Markdown markup counts as words, which is close enough.
func SpeakingTime(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	d := time.Duration(float64(words) / WordsPerMinute * float64(time.Minute))
	if d < time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}
