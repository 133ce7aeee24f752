package game

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Optional leading +, then at least six digits, spaces or dashes.
var phonePattern = regexp.MustCompile(`^[+]?[\d\s-]{6,}$`)

// ValidatePhone reports whether the trimmed phone is acceptable for sign-in.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// Score count-up on the game-over screen.
const (
	ScoreAnimationSteps = 50
	ScoreFrameInterval  = 20 * time.Millisecond
)

// ScoreFrames returns the values displayed on each animation tick while
// counting from 0 up to final. The last frame is always final.
func ScoreFrames(final, steps int) []int {
	if steps <= 0 || final <= 0 {
		return []int{final}
	}
	increment := float64(final) / float64(steps)
	frames := make([]int, 0, steps+1)
	current := 0.0
	for {
		current += increment
		if current >= float64(final) {
			return append(frames, final)
		}
		frames = append(frames, int(current))
	}
}

// UpdateBest returns the best score after observing candidate. It never
// goes down.
func UpdateBest(stored, candidate int) int {
	return max(stored, candidate)
}

// ParseScore reads an integer the way a lenient query parser would: leading
// whitespace, an optional sign, then digits up to the first non-digit.
// Anything unparsable yields 0; values beyond MaxInt32 are clamped.
func ParseScore(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt32-d)/10 {
			n = math.MaxInt32
			break
		}
		n = n*10 + d
	}
	return sign * n
}
