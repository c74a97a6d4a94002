package card

// validation.go holds the field rules shared by the import pipeline, the QR
// encoder and single-record create.
//
// Validation happens at two levels:
//  1. Required fields: the six core fields must be non-blank
//  2. Value rules: email grammar and length, gender range, parseable date
//
// Check returns every problem (for API responses that show all of them at
// once), Validate just the first one (for batch processing).

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxEmailLength is the longest accepted email address.
	MaxEmailLength = 128

	// MaxPhotoLength is the base64 length of a 1 MiB photo.
	MaxPhotoLength = 1_398_132
)

// Field names a required field and how to read it from a Wire.
type Field struct {
	Name string
	Get  func(Wire) string
}

// RequiredFields lists the fields every record must carry, in wire order.
var RequiredFields = []Field{
	{Name: "Name", Get: func(w Wire) string { return w.Name }},
	{Name: "Gender", Get: func(w Wire) string {
		if w.Gender == int(GenderInvalid) {
			return ""
		}
		return Gender(w.Gender).String()
	}},
	{Name: "Email", Get: func(w Wire) string { return w.Email }},
	{Name: "PhoneNumber", Get: func(w Wire) string { return w.PhoneNumber }},
	{Name: "DateOfBirth", Get: func(w Wire) string { return w.DateOfBirth }},
	{Name: "Address", Get: func(w Wire) string { return w.Address }},
}

var validate = validator.New()

// ValidationResult contains the result of validating a record.
type ValidationResult struct {
	Valid  bool     // True if all rules passed
	Errors []*Error // One entry per failed rule (empty if Valid)
}

// Err returns the first error, or nil when the record is valid.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Check applies every rule to w and reports all failures.
func Check(w Wire) ValidationResult {
	result := ValidationResult{Valid: true}
	fail := func(e *Error) {
		result.Valid = false
		result.Errors = append(result.Errors, e)
	}

	missing := make(map[string]bool, len(RequiredFields))
	for _, f := range RequiredFields {
		if strings.TrimSpace(f.Get(w)) == "" {
			missing[f.Name] = true
			fail(&Error{Kind: KindMissingRequiredFields, Field: f.Name})
		}
	}

	if !missing["Email"] && !ValidEmail(w.Email) {
		fail(&Error{Kind: KindInvalidEmail, Field: "Email", Detail: w.Email})
	}
	if !missing["Gender"] && !Gender(w.Gender).Valid() {
		fail(&Error{Kind: KindInvalidGender, Field: "Gender", Detail: Gender(w.Gender).String()})
	}
	if !missing["DateOfBirth"] {
		if _, ok := ParseDate(w.DateOfBirth); !ok {
			fail(&Error{Kind: KindInvalidDate, Field: "DateOfBirth", Detail: w.DateOfBirth})
		}
	}

	return result
}

// Validate returns the first rule w breaks, or nil.
func Validate(w Wire) error {
	return Check(w).Err()
}

// ValidEmail reports whether s is a well-formed address of at most
// MaxEmailLength characters.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxEmailLength {
		return false
	}
	return validate.Var(s, "email") == nil
}

// CapPhoto drops a photo longer than MaxPhotoLength. Bulk ingestion uses it so
// an oversized photo never fails the record.
func CapPhoto(photo string) string {
	if len(photo) > MaxPhotoLength {
		return ""
	}
	return photo
}

// CheckPhoto rejects a photo longer than MaxPhotoLength.
func CheckPhoto(photo string) error {
	if len(photo) > MaxPhotoLength {
		return &Error{Kind: KindPhotoTooLarge, Field: "Photo"}
	}
	return nil
}
