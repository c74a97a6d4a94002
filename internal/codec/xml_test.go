package codec

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/cardex/internal/card"
)

const arabicDoc = `<?xml version="1.0" encoding="utf-16"?>
<BusinessCards>
  <BusinessCard>
    <Name>أحمد صالح</Name>
    <Gender>1</Gender>
    <Email>ahmad@example.com</Email>
    <Phone>+962790000000</Phone>
    <DateOfBirth>1990-04-12T00:00:00</DateOfBirth>
    <Address>عمّان</Address>
  </BusinessCard>
</BusinessCards>`

func utf16le(t *testing.T, s string) []byte {
	t.Helper()
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func utf16be(t *testing.T, s string) []byte {
	t.Helper()
	out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestXMLParseEncodings(t *testing.T) {
	want := []card.Wire{{
		Name:        "أحمد صالح",
		Gender:      1,
		Email:       "ahmad@example.com",
		PhoneNumber: "+962790000000",
		DateOfBirth: "1990-04-12",
		Address:     "عمّان",
	}}
	utf8Doc := strings.Replace(arabicDoc, "utf-16", "utf-8", 1)

	tests := []struct {
		name  string
		input []byte
	}{
		{"utf-16le with bom", utf16le(t, arabicDoc)},
		{"utf-16be with bom", utf16be(t, arabicDoc)},
		{"utf-8", []byte(utf8Doc)},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, utf8Doc...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := XML{}.Parse(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestXMLParseDeclaredLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<BusinessCards><BusinessCard><Name>Jos\xE9</Name><Gender>male</Gender>" +
		"<Email>jose@example.com</Email><PhoneNumber>1</PhoneNumber>" +
		"<DateOfBirth>1980-02-29</DateOfBirth><Address>Madrid</Address>" +
		"<Unknown>ignored</Unknown></BusinessCard></BusinessCards>")

	got, err := XML{}.Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "José", got[0].Name)
	assert.Equal(t, 1, got[0].Gender)
}

func TestXMLParseErrors(t *testing.T) {
	record := func(inner string) string {
		return "<BusinessCards><BusinessCard>" + inner + "</BusinessCard></BusinessCards>"
	}
	complete := "<Name>A</Name><Gender>0</Gender><Email>a@example.com</Email>" +
		"<PhoneNumber>1</PhoneNumber><DateOfBirth>2000-01-01</DateOfBirth><Address>X</Address>"

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unparsable markup",
			input:   "<BusinessCards><BusinessCard><Name>A</Nam></BusinessCard>",
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "wrong root element",
			input:   "<Cards>" + record(complete) + "</Cards>",
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "not xml at all",
			input:   "just some text",
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "unknown gender token",
			input:   record(strings.Replace(complete, "<Gender>0</Gender>", "<Gender>robot</Gender>", 1)),
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "unparsable date of birth",
			input:   record(strings.Replace(complete, "<DateOfBirth>2000-01-01</DateOfBirth>", "<DateOfBirth>notadate</DateOfBirth>", 1)),
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "record after the root element closes",
			input:   "<BusinessCards></BusinessCards><BusinessCard>" + complete + "</BusinessCard>",
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "second root element",
			input:   record(complete) + record(complete),
			wantErr: card.ErrXMLParse,
		},
		{
			name:    "missing email fails whole document",
			input:   "<BusinessCards><BusinessCard>" + complete + "</BusinessCard>" + "<BusinessCard>" + strings.Replace(complete, "<Email>a@example.com</Email>", "", 1) + "</BusinessCard></BusinessCards>",
			wantErr: card.ErrInvalidFormat,
		},
		{
			name:    "blank address",
			input:   record(strings.Replace(complete, "<Address>X</Address>", "<Address>  </Address>", 1)),
			wantErr: card.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := XML{}.Parse(context.Background(), []byte(tt.input))
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestXMLSerialize(t *testing.T) {
	cards := []card.Card{{
		Name:        "أحمد & Co",
		Gender:      card.GenderFemale,
		Email:       "ahmad@example.com",
		PhoneNumber: "1",
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Address:     "<Amman>",
	}}

	out, err := XML{}.Serialize(context.Background(), cards)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte{0xFF, 0xFE}), "output should start with a UTF-16LE BOM")

	text, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(out)
	require.NoError(t, err)
	doc := string(text)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="utf-16"?>`))
	assert.Contains(t, doc, "<BusinessCards>")
	assert.Contains(t, doc, "<BusinessCard>")
	assert.Contains(t, doc, "<Gender>2</Gender>")
	assert.Contains(t, doc, "<DateOfBirth>1990-04-12</DateOfBirth>")
	assert.Contains(t, doc, "&lt;Amman&gt;")
	assert.NotContains(t, doc, "<Photo>")
}

func TestXMLRoundTrip(t *testing.T) {
	cards := []card.Card{
		{Name: "أحمد صالح", Gender: card.GenderMale, Email: "ahmad@example.com", PhoneNumber: "+962", DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC), Address: "عمّان"},
		{Name: "Lina", Gender: card.GenderFemale, Email: "lina@example.com", PhoneNumber: "555", DateOfBirth: time.Date(1985, 12, 1, 0, 0, 0, 0, time.UTC), Address: "Beirut", Photo: "aGVsbG8="},
	}

	out, err := XML{}.Serialize(context.Background(), cards)
	require.NoError(t, err)

	got, err := XML{}.Parse(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, card.Wires(cards), got)
}

func TestXMLParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := XML{}.Parse(ctx, utf16le(t, arabicDoc))
	assert.ErrorIs(t, err, context.Canceled)
}
