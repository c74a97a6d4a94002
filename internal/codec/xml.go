package codec

// xml.go reads and writes BusinessCards documents.
//
// Input encoding is detected from the byte order mark or, failing that, the
// first bytes of the document ('<' as one or two bytes). UTF-16 input is
// transcoded to UTF-8 before parsing; any other declared charset is resolved
// through the declaration. Output is always UTF-16LE with a BOM.
//
// A record missing any required element aborts the whole document with
// InvalidFormat. Bulk XML files are schema-shaped and are expected to be
// complete, unlike CSV rows which are validated one at a time.

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/cardex/internal/card"
)

const (
	xmlRootElement   = "BusinessCards"
	xmlRecordElement = "BusinessCard"
	xmlDeclaration   = `<?xml version="1.0" encoding="utf-16"?>` + "\n"
)

// XML is the BusinessCards document codec.
type XML struct{}

func (XML) Format() string      { return "xml" }
func (XML) Extension() string   { return ".xml" }
func (XML) ContentType() string { return "application/xml" }

// xmlRecord is one BusinessCard element. Phone is accepted as an alias of
// PhoneNumber.
type xmlRecord struct {
	Name        string `xml:"Name"`
	Gender      string `xml:"Gender"`
	Email       string `xml:"Email"`
	PhoneNumber string `xml:"PhoneNumber"`
	Phone       string `xml:"Phone"`
	DateOfBirth string `xml:"DateOfBirth"`
	Address     string `xml:"Address"`
	Photo       string `xml:"Photo"`
}

func (r xmlRecord) wire(index int) (card.Wire, error) {
	phone := strings.TrimSpace(r.PhoneNumber)
	if phone == "" {
		phone = strings.TrimSpace(r.Phone)
	}

	required := [...]struct{ name, value string }{
		{"Name", r.Name},
		{"Gender", r.Gender},
		{"Email", r.Email},
		{"PhoneNumber", phone},
		{"DateOfBirth", r.DateOfBirth},
		{"Address", r.Address},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return card.Wire{}, &card.Error{
				Kind:   card.KindInvalidFormat,
				Field:  f.name,
				Detail: fmt.Sprintf("record %d", index),
			}
		}
	}

	gender, ok := card.ParseGender(r.Gender)
	if !ok {
		return card.Wire{}, &card.Error{
			Kind:   card.KindXMLParseError,
			Field:  "Gender",
			Detail: fmt.Sprintf("record %d: %q", index, strings.TrimSpace(r.Gender)),
		}
	}

	dob, ok := card.ParseDate(r.DateOfBirth)
	if !ok {
		return card.Wire{}, &card.Error{
			Kind:   card.KindXMLParseError,
			Field:  "DateOfBirth",
			Detail: fmt.Sprintf("record %d: %q", index, strings.TrimSpace(r.DateOfBirth)),
		}
	}

	return card.Wire{
		Name:        strings.TrimSpace(r.Name),
		Gender:      int(gender),
		Email:       strings.TrimSpace(r.Email),
		PhoneNumber: phone,
		DateOfBirth: dob.Format(card.DateLayout),
		Address:     strings.TrimSpace(r.Address),
		Photo:       card.CapPhoto(strings.TrimSpace(r.Photo)),
	}, nil
}

// Parse decodes a BusinessCards document.
func (XML) Parse(ctx context.Context, data []byte) ([]card.Wire, error) {
	text, err := toUTF8(data)
	if err != nil {
		return nil, card.Wrap(card.KindXMLParseError, err)
	}

	dec := xml.NewDecoder(bytes.NewReader(text))
	dec.CharsetReader = charsetReader

	var (
		out        []card.Wire
		inRoot     bool
		rootClosed bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, card.Wrap(card.KindXMLParseError, err)
		}

		var se xml.StartElement
		switch t := tok.(type) {
		case xml.StartElement:
			se = t
		case xml.EndElement:
			if inRoot && t.Name.Local == xmlRootElement {
				rootClosed = true
			}
			continue
		default:
			continue
		}
		if rootClosed {
			return nil, card.New(card.KindXMLParseError, "element <%s> after </%s>", se.Name.Local, xmlRootElement)
		}
		if !inRoot {
			if se.Name.Local != xmlRootElement {
				return nil, card.New(card.KindXMLParseError, "unexpected root element <%s>", se.Name.Local)
			}
			inRoot = true
			continue
		}
		if se.Name.Local != xmlRecordElement {
			if err := dec.Skip(); err != nil {
				return nil, card.Wrap(card.KindXMLParseError, err)
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var rec xmlRecord
		if err := dec.DecodeElement(&rec, &se); err != nil {
			return nil, card.Wrap(card.KindXMLParseError, err)
		}
		w, err := rec.wire(len(out) + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}

	if !inRoot {
		return nil, card.New(card.KindXMLParseError, "missing <%s> root element", xmlRootElement)
	}
	return out, nil
}

// toUTF8 transcodes UTF-16 input and strips a UTF-8 BOM. Anything else is
// returned unchanged for the decoder's charset handling.
func toUTF8(data []byte) ([]byte, error) {
	var order unicode.Endianness
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{'<', 0x00}):
		order = unicode.LittleEndian
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}), bytes.HasPrefix(data, []byte{0x00, '<'}):
		order = unicode.BigEndian
	default:
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
	}

	out, _, err := transform.Bytes(unicode.UTF16(order, unicode.UseBOM).NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode utf-16: %w", err)
	}
	return out, nil
}

// charsetReader is called for declarations other than UTF-8. UTF-16 input
// has already been transcoded by toUTF8, so its declaration is ignored.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if strings.HasPrefix(strings.ToLower(label), "utf-16") || strings.EqualFold(label, "unicode") {
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// xmlOutRecord is the serialized form of one card.
type xmlOutRecord struct {
	Name        string `xml:"Name"`
	Gender      int    `xml:"Gender"`
	Email       string `xml:"Email"`
	PhoneNumber string `xml:"PhoneNumber"`
	DateOfBirth string `xml:"DateOfBirth"`
	Address     string `xml:"Address"`
	Photo       string `xml:"Photo,omitempty"`
}

// Serialize writes a UTF-16LE BusinessCards document.
func (XML) Serialize(ctx context.Context, cards []card.Card) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: xmlRootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("encode root: %w", err)
	}
	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := c.Wire()
		rec := xmlOutRecord{
			Name:        w.Name,
			Gender:      w.Gender,
			Email:       w.Email,
			PhoneNumber: w.PhoneNumber,
			DateOfBirth: w.DateOfBirth,
			Address:     w.Address,
			Photo:       w.Photo,
		}
		if err := enc.EncodeElement(rec, xml.StartElement{Name: xml.Name{Local: xmlRecordElement}}); err != nil {
			return nil, fmt.Errorf("encode card %s: %w", c.ID, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("encode root: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush xml: %w", err)
	}

	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode utf-16: %w", err)
	}
	return out, nil
}
