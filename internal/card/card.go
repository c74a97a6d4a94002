// Package card holds the business card record model shared by every channel
// of the exchange service: the canonical Card, its text-only Wire variant,
// the validation rules both pipelines apply, and the error catalog.
package card

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender is the enumerated gender of a card holder.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// GenderInvalid marks a gender token that could not be parsed at all.
// Validation rejects it like any other out-of-range value.
const GenderInvalid Gender = -1

var genderNames = map[string]Gender{
	"unspecified": GenderUnspecified,
	"male":        GenderMale,
	"female":      GenderFemale,
}

// Valid reports whether g is one of the defined values.
func (g Gender) Valid() bool {
	return g >= GenderUnspecified && g <= GenderFemale
}

func (g Gender) String() string {
	switch g {
	case GenderUnspecified:
		return "Unspecified"
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return strconv.Itoa(int(g))
	}
}

// ParseGender accepts an enum name (case-insensitive) or a numeric code.
// Numeric codes are returned even when out of range; ok is false only when
// the token is neither a name nor a number.
func ParseGender(s string) (g Gender, ok bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Gender(n), true
	}
	if g, found := genderNames[strings.ToLower(s)]; found {
		return g, true
	}
	return GenderInvalid, false
}

// DateLayout is the wire format of DateOfBirth.
const DateLayout = "2006-01-02"

// dateLayouts lists accepted input layouts, ISO variants first.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2", "2006.1.2",
	"2006-01-02T15:04:05", time.RFC3339,
	"1/2/2006", "1-2-2006", "1.2.2006",
	"Jan 2, 2006", "2 Jan 2006",
	"20060102",
}

// ParseDate parses a locale-neutral date string.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate rewrites a parseable date as yyyy-MM-dd and returns anything
// else unchanged, leaving the rejection to validation.
func NormalizeDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format(DateLayout)
	}
	return strings.TrimSpace(s)
}

// Card is the canonical business card. ID, LastUpdateAt and Deleted are owned
// by the repository.
type Card struct {
	ID           uuid.UUID
	Name         string
	Gender       Gender
	DateOfBirth  time.Time
	Email        string
	PhoneNumber  string
	Address      string
	Photo        string // base64, empty when absent
	LastUpdateAt time.Time
	Deleted      bool
}

// Wire is the text-only form of a card used by XML documents, QR payloads and
// API bodies. Field order is the QR payload order.
type Wire struct {
	Name        string `json:"Name"`
	Gender      int    `json:"Gender"`
	Email       string `json:"Email"`
	PhoneNumber string `json:"PhoneNumber"`
	DateOfBirth string `json:"DateOfBirth"`
	Address     string `json:"Address"`
	Photo       string `json:"Photo,omitempty"`
}

// Wire converts c to its text form.
func (c Card) Wire() Wire {
	w := Wire{
		Name:        c.Name,
		Gender:      int(c.Gender),
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		Photo:       c.Photo,
	}
	if !c.DateOfBirth.IsZero() {
		w.DateOfBirth = c.DateOfBirth.Format(DateLayout)
	}
	return w
}

// Card converts w to a Card. Callers are expected to have run Validate; the
// only failure left here is an unparseable date.
func (w Wire) Card() (Card, error) {
	dob, ok := ParseDate(w.DateOfBirth)
	if !ok {
		return Card{}, &Error{Kind: KindInvalidDate, Field: "DateOfBirth", Detail: w.DateOfBirth}
	}
	return Card{
		Name:        strings.TrimSpace(w.Name),
		Gender:      Gender(w.Gender),
		DateOfBirth: dob,
		Email:       strings.TrimSpace(w.Email),
		PhoneNumber: strings.TrimSpace(w.PhoneNumber),
		Address:     strings.TrimSpace(w.Address),
		Photo:       w.Photo,
	}, nil
}

// Wires converts a slice of cards to wire records.
func Wires(cards []Card) []Wire {
	out := make([]Wire, len(cards))
	for i, c := range cards {
		out[i] = c.Wire()
	}
	return out
}

// ListQuery selects a page of cards.
type ListQuery struct {
	Page           int
	PageSize       int
	Search         string
	OrderBy        string // name, email, dateOfBirth, lastUpdateAt
	OrderDirection string // asc or desc
	WithPhoto      bool
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize applies defaults and bounds. A search always starts on page one.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 || q.Search != "" {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if !strings.EqualFold(q.OrderDirection, "desc") {
		q.OrderDirection = "asc"
	} else {
		q.OrderDirection = "desc"
	}
	return q
}

// Page is one page of a List result.
type Page struct {
	Cards    []Card
	Page     int
	PageSize int
	Total    int64
}

// TotalPages returns the number of pages for Total at PageSize.
func (p Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
