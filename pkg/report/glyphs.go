package report

import "strings"

// DisplaySequence is the pool of single-glyph shift markers, consumed in
// order once letter preferences are exhausted
const DisplaySequence = "ABCDEFGHIJKLMNOPQRTSUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

// Pseudo-shift glyphs
const (
	HolidayGlyph = "|"
	OffGlyph     = "-"
)

// NewGlyphPool returns the full display sequence as a mutable pool value
func NewGlyphPool() []rune {
	return []rune(DisplaySequence)
}

// AssignGlyphs maps each shift id to a display glyph, threading the
// remaining pool through rather than mutating shared state. Off and
// holiday pseudo-shifts get their fixed glyphs; other shifts prefer the
// first letter of their id (exact case, then upper, then lower) and fall
// back to the next free glyph of the pool.
func AssignGlyphs(shiftIDs []string, pseudo map[string]string, pool []rune) (map[string]string, []rune) {
	glyphs := make(map[string]string, len(shiftIDs))
	var unassigned []string

	for _, id := range shiftIDs {
		if g, ok := pseudo[id]; ok {
			glyphs[id] = g
			continue
		}
		if id == "" {
			continue
		}

		char := rune(id[0])
		var taken bool
		for _, candidate := range []rune{char, upper(char), lower(char)} {
			if pool, taken = take(pool, candidate); taken {
				glyphs[id] = string(candidate)
				break
			}
		}
		if !taken {
			unassigned = append(unassigned, id)
		}
	}

	// remaining shifts consume the pool front to back
	for _, id := range unassigned {
		if len(pool) == 0 {
			glyphs[id] = "?"
			continue
		}
		glyphs[id] = string(pool[0])
		pool = pool[1:]
	}

	return glyphs, pool
}

// take removes the first occurrence of candidate from the pool
func take(pool []rune, candidate rune) ([]rune, bool) {
	for i, r := range pool {
		if r == candidate {
			return append(pool[:i:i], pool[i+1:]...), true
		}
	}
	return pool, false
}

func upper(r rune) rune {
	return rune(strings.ToUpper(string(r))[0])
}

func lower(r rune) rune {
	return rune(strings.ToLower(string(r))[0])
}
