package card

import (
	"strings"
	"time"
)

var monthAbbrev = [...]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Search is a List search term resolved into the forms each field is
// matched against.
type Search struct {
	Text   string     // lowercased, trimmed
	Gender Gender     // GenderInvalid when the term names no gender
	Month  time.Month // 0 when the term is not part of a month abbreviation
}

// ParseSearch resolves s. A term matches a gender when it contains the
// gender word or is part of it ("fem" is Female, "ale" is Male), and a month
// when it is part of the month's three-letter abbreviation.
func ParseSearch(s string) Search {
	term := strings.ToLower(strings.TrimSpace(s))
	out := Search{Text: term, Gender: GenderInvalid}
	if term == "" {
		return out
	}

	switch {
	case strings.Contains(term, "female") || (strings.Contains("female", term) && !strings.Contains("male", term)):
		out.Gender = GenderFemale
	case strings.Contains(term, "male") || strings.Contains("male", term):
		out.Gender = GenderMale
	}

	for i, abbr := range monthAbbrev {
		if strings.Contains(abbr, term) {
			out.Month = time.Month(i + 1)
			break
		}
	}
	return out
}
