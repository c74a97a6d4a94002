package card

// errors.go defines the closed set of failures the exchange subsystem reports.
//
// Every failure is a *Error carrying a Kind. The Kind indexes an immutable
// catalog entry holding a support code, a user-facing message, a suggested
// action and the error family. Families keep format errors (the bytes do not
// have the expected shape) apart from validation errors (well-formed input
// with unacceptable values):
//
//	FILE001-FILE005  file level failures (empty, too large, unsupported)
//	CSV001-CSV002    CSV format failures
//	XML001-XML002    XML format failures
//	VAL001-VAL005    field validation failures
//	QR001-QR003      QR code failures
//	IMG001-IMG002    photo conversion failures
//	CARD001-CARD004  record lookup and persistence failures
//	EXP001           export failures

import (
	"errors"
	"fmt"
)

// Family groups kinds by how callers should react to them.
type Family int

const (
	FamilyFormat Family = iota + 1
	FamilyValidation
	FamilyNotFound
	FamilyLimit
	FamilyInternal
)

// Kind identifies one entry of the error catalog.
type Kind int

const (
	KindEmptyFile Kind = iota + 1
	KindFileSizeExceeded
	KindUnsupportedFileFormat
	KindNoFileUploaded
	KindUnsupportedDelimiter
	KindMalformedRow
	KindInvalidFormat
	KindXMLParseError
	KindMissingRequiredFields
	KindInvalidEmail
	KindInvalidGender
	KindInvalidDate
	KindPhotoTooLarge
	KindQRGenerationFailed
	KindInvalidQRCodeImage
	KindInvalidBusinessCardData
	KindUnsupportedImageFormat
	KindImageConversionError
	KindBusinessCardNotFound
	KindNoBusinessCardsFound
	KindAtLeastOneIDRequired
	KindCreationFailed
	KindUnsupportedExportFormat
)

// Entry is the display data associated with a Kind.
type Entry struct {
	Name    string
	Code    string
	Message string
	Action  string
	Family  Family
}

var catalog = map[Kind]Entry{
	KindEmptyFile: {
		Name: "EmptyFile", Code: "FILE001", Family: FamilyValidation,
		Message: "File is required and cannot be empty",
		Action:  "Select a file with at least one record",
	},
	KindFileSizeExceeded: {
		Name: "FileSizeExceeded", Code: "FILE002", Family: FamilyLimit,
		Message: "File exceeds the maximum allowed size",
		Action:  "Upload a smaller file",
	},
	KindUnsupportedFileFormat: {
		Name: "UnsupportedFileFormat", Code: "FILE003", Family: FamilyFormat,
		Message: "Unsupported file format",
		Action:  "Upload a .csv or .xml file, or a PNG, JPEG or GIF image for QR codes",
	},
	KindNoFileUploaded: {
		Name: "NoFileUploaded", Code: "FILE004", Family: FamilyValidation,
		Message: "No file was uploaded",
		Action:  "Attach a file to the request",
	},
	KindUnsupportedDelimiter: {
		Name: "UnsupportedDelimiter", Code: "CSV001", Family: FamilyFormat,
		Message: "Unsupported CSV format, no semicolon or comma delimiter found",
		Action:  "Separate the header columns with ';' or ','",
	},
	KindMalformedRow: {
		Name: "MalformedRow", Code: "CSV002", Family: FamilyFormat,
		Message: "Invalid CSV format, not enough fields",
		Action:  "Every row needs name, gender, email, phone, date of birth and address",
	},
	KindInvalidFormat: {
		Name: "InvalidFormat", Code: "XML001", Family: FamilyFormat,
		Message: "Invalid format, a record is missing required fields",
		Action:  "Fill in every required element of each business card",
	},
	KindXMLParseError: {
		Name: "XmlParseError", Code: "XML002", Family: FamilyFormat,
		Message: "Error while parsing XML file",
		Action:  "Check that the file is well-formed with a BusinessCards root element",
	},
	KindMissingRequiredFields: {
		Name: "MissingRequiredFields", Code: "VAL001", Family: FamilyValidation,
		Message: "One or more required fields are missing or invalid",
		Action:  "Provide name, gender, email, phone number, date of birth and address",
	},
	KindInvalidEmail: {
		Name: "InvalidEmail", Code: "VAL002", Family: FamilyValidation,
		Message: "The email format is invalid",
		Action:  "Use a valid address of at most 128 characters",
	},
	KindInvalidGender: {
		Name: "InvalidGender", Code: "VAL003", Family: FamilyValidation,
		Message: "Gender must be 0 (unspecified), 1 (male) or 2 (female)",
		Action:  "Use one of the supported gender values",
	},
	KindInvalidDate: {
		Name: "InvalidDate", Code: "VAL004", Family: FamilyValidation,
		Message: "Invalid date format",
		Action:  "Use YYYY-MM-DD",
	},
	KindPhotoTooLarge: {
		Name: "PhotoTooLarge", Code: "VAL005", Family: FamilyLimit,
		Message: "Photo exceeds the maximum size of 1 MB",
		Action:  "Use a smaller photo",
	},
	KindQRGenerationFailed: {
		Name: "QrGenerationFailed", Code: "QR001", Family: FamilyValidation,
		Message: "Failed to generate the QR code",
		Action:  "Check that all required fields are filled in and the email is valid",
	},
	KindInvalidQRCodeImage: {
		Name: "InvalidQrCodeImage", Code: "QR002", Family: FamilyFormat,
		Message: "Invalid or empty QR code image",
		Action:  "Upload a clear image containing a QR code",
	},
	KindInvalidBusinessCardData: {
		Name: "InvalidBusinessCardData", Code: "QR003", Family: FamilyFormat,
		Message: "Invalid business card data extracted from the QR code",
		Action:  "Use a QR code generated by this service",
	},
	KindUnsupportedImageFormat: {
		Name: "UnsupportedImageFormat", Code: "IMG001", Family: FamilyFormat,
		Message: "Unsupported image format, only PNG, JPG and GIF are allowed",
		Action:  "Convert the image to PNG, JPG or GIF",
	},
	KindImageConversionError: {
		Name: "ImageConversionError", Code: "IMG002", Family: FamilyInternal,
		Message: "Error while converting image to Base64",
		Action:  "Please try again",
	},
	KindBusinessCardNotFound: {
		Name: "BusinessCardNotFound", Code: "CARD001", Family: FamilyNotFound,
		Message: "Business card not found",
		Action:  "Verify the identifier",
	},
	KindNoBusinessCardsFound: {
		Name: "NoBusinessCardsFound", Code: "CARD002", Family: FamilyNotFound,
		Message: "No business cards found for the given IDs",
		Action:  "Import or create business cards first",
	},
	KindAtLeastOneIDRequired: {
		Name: "AtLeastOneIdRequired", Code: "CARD003", Family: FamilyValidation,
		Message: "At least one ID is required in the list",
		Action:  "Provide one or more identifiers",
	},
	KindCreationFailed: {
		Name: "BusinessCardCreationFailed", Code: "CARD004", Family: FamilyInternal,
		Message: "Failed to create the business card",
		Action:  "Please try again",
	},
	KindUnsupportedExportFormat: {
		Name: "UnsupportedExportFormat", Code: "EXP001", Family: FamilyValidation,
		Message: "The export format is unsupported",
		Action:  "Use csv or xml",
	},
}

// Lookup returns the catalog entry for k. Unknown kinds get an internal entry.
func Lookup(k Kind) Entry {
	if e, ok := catalog[k]; ok {
		return e
	}
	return Entry{Name: "Unknown", Code: "ERR000", Message: "An unexpected error occurred", Family: FamilyInternal}
}

// Catalog returns a copy of the full catalog.
func Catalog() map[Kind]Entry {
	out := make(map[Kind]Entry, len(catalog))
	for k, e := range catalog {
		out[k] = e
	}
	return out
}

func (k Kind) String() string {
	return Lookup(k).Name
}

// Error is a catalogued failure. Field and Detail narrow it down and Err keeps
// the underlying cause.
type Error struct {
	Kind   Kind
	Field  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := Lookup(e.Kind).Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below work with errors.Is regardless of Field, Detail or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEmptyFile               = &Error{Kind: KindEmptyFile}
	ErrFileSizeExceeded        = &Error{Kind: KindFileSizeExceeded}
	ErrUnsupportedFileFormat   = &Error{Kind: KindUnsupportedFileFormat}
	ErrNoFileUploaded          = &Error{Kind: KindNoFileUploaded}
	ErrUnsupportedDelimiter    = &Error{Kind: KindUnsupportedDelimiter}
	ErrMalformedRow            = &Error{Kind: KindMalformedRow}
	ErrInvalidFormat           = &Error{Kind: KindInvalidFormat}
	ErrXMLParse                = &Error{Kind: KindXMLParseError}
	ErrMissingRequiredFields   = &Error{Kind: KindMissingRequiredFields}
	ErrInvalidEmail            = &Error{Kind: KindInvalidEmail}
	ErrInvalidGender           = &Error{Kind: KindInvalidGender}
	ErrInvalidDate             = &Error{Kind: KindInvalidDate}
	ErrPhotoTooLarge           = &Error{Kind: KindPhotoTooLarge}
	ErrQRGenerationFailed      = &Error{Kind: KindQRGenerationFailed}
	ErrInvalidQRCodeImage      = &Error{Kind: KindInvalidQRCodeImage}
	ErrInvalidBusinessCardData = &Error{Kind: KindInvalidBusinessCardData}
	ErrUnsupportedImageFormat  = &Error{Kind: KindUnsupportedImageFormat}
	ErrImageConversion         = &Error{Kind: KindImageConversionError}
	ErrNotFound                = &Error{Kind: KindBusinessCardNotFound}
	ErrNoBusinessCardsFound    = &Error{Kind: KindNoBusinessCardsFound}
	ErrAtLeastOneIDRequired    = &Error{Kind: KindAtLeastOneIDRequired}
	ErrCreationFailed          = &Error{Kind: KindCreationFailed}
	ErrUnsupportedExportFormat = &Error{Kind: KindUnsupportedExportFormat}
)

// New returns an *Error of kind k with a formatted detail.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of kind k caused by err.
func Wrap(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// FamilyOf returns the family of err, or FamilyInternal for uncatalogued errors.
func FamilyOf(err error) Family {
	if k, ok := KindOf(err); ok {
		return Lookup(k).Family
	}
	return FamilyInternal
}
