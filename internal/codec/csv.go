package codec

// csv.go reads and writes delimited business card files.
//
// Input may use ';' or ',' as the delimiter. The header line decides: a
// semicolon anywhere in it wins, then a comma, otherwise the file is rejected.
// Columns are positional (name, gender, email, phone, date of birth, address,
// optional photo) and extra columns are ignored. Output always uses ';'.

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/cardex/internal/card"
)

// CSVHeader is the header row written on export.
var CSVHeader = []string{"Name", "Gender", "Email", "PhoneNumber", "DateOfBirth", "Address", "Photo"}

// csvMinFields is the number of leading columns every row must have.
const csvMinFields = 6

// CSV is the delimited text codec.
type CSV struct{}

func (CSV) Format() string      { return "csv" }
func (CSV) Extension() string   { return ".csv" }
func (CSV) ContentType() string { return "text/csv" }

// Parse reads every data row into a wire record. Row-level value problems
// (bad gender token, unparseable date) are carried through for validation; a
// row with too few fields aborts the whole file.
func (CSV) Parse(ctx context.Context, data []byte) ([]card.Wire, error) {
	br := bufio.NewReader(NewTextReader(bytes.NewReader(data)))

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	delim, ok := sniffDelimiter(header)
	if !ok {
		return nil, &card.Error{Kind: card.KindUnsupportedDelimiter}
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []card.Wire
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &card.Error{Kind: card.KindMalformedRow, Detail: fmt.Sprintf("line %d", pe.Line+1), Err: pe.Err}
			}
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		if len(row) < csvMinFields {
			line, _ := r.FieldPos(0)
			return nil, &card.Error{
				Kind:   card.KindMalformedRow,
				Detail: fmt.Sprintf("line %d has %d fields, need %d", line+1, len(row), csvMinFields),
			}
		}
		out = append(out, wireFromRow(row))
	}

	return out, nil
}

func sniffDelimiter(header string) (rune, bool) {
	switch {
	case strings.ContainsRune(header, ';'):
		return ';', true
	case strings.ContainsRune(header, ','):
		return ',', true
	default:
		return 0, false
	}
}

func wireFromRow(row []string) card.Wire {
	gender, ok := card.ParseGender(CleanCell(row[1]))
	if !ok {
		gender = card.GenderInvalid
	}

	w := card.Wire{
		Name:        CleanCell(row[0]),
		Gender:      int(gender),
		Email:       CleanCell(row[2]),
		PhoneNumber: CleanCell(row[3]),
		DateOfBirth: card.NormalizeDate(CleanCell(row[4])),
		Address:     CleanCell(row[5]),
	}
	if len(row) > csvMinFields {
		w.Photo = card.CapPhoto(strings.TrimSpace(row[6]))
	}
	return w
}

// Serialize writes the header and one ';'-joined row per card.
func (CSV) Serialize(ctx context.Context, cards []card.Card) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(CSVHeader, ";"))
	buf.WriteByte('\n')

	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w := c.Wire()
		fields := [...]string{
			w.Name,
			strconv.Itoa(w.Gender),
			w.Email,
			w.PhoneNumber,
			w.DateOfBirth,
			w.Address,
			w.Photo,
		}
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(';')
			}
			buf.WriteString(quoteField(f))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// quoteField quotes values that contain either delimiter, a quote or a line
// break. encoding/csv only quotes the active delimiter, and files written here
// must stay readable when a consumer sniffs ',' instead.
func quoteField(s string) string {
	if !strings.ContainsAny(s, ";,\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
