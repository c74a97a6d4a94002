package codec

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/cardex/internal/card"
)

// ============================================================================
// Parse Benchmarks
// ============================================================================

func benchCSV(rows int) []byte {
	var sb strings.Builder
	sb.WriteString(csvHeaderLine)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "Person %d;%d;person%d@example.com;07900%05d;1990-%02d-%02d;\"Amman, Jordan\"\n",
			i, i%3, i, i, i%12+1, i%28+1)
	}
	return []byte(sb.String())
}

func benchCards(n int) []card.Card {
	cards := make([]card.Card, n)
	for i := range cards {
		c, _ := card.Wire{
			Name:        fmt.Sprintf("أحمد %d", i),
			Gender:      int(card.GenderMale),
			Email:       fmt.Sprintf("person%d@example.com", i),
			PhoneNumber: "0790000000",
			DateOfBirth: "1990-01-02",
			Address:     "Amman; Jordan",
		}.Card()
		cards[i] = c
	}
	return cards
}

// BenchmarkCSVParse benchmarks the import hot path at typical file sizes.
func BenchmarkCSVParse(b *testing.B) {
	for _, rows := range []int{100, 1000, 10000} {
		data := benchCSV(rows)
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := (CSV{}).Parse(context.Background(), data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkXMLParse includes the UTF-16 decode that every export round trip pays.
func BenchmarkXMLParse(b *testing.B) {
	data, err := (XML{}).Serialize(context.Background(), benchCards(1000))
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (XML{}).Parse(context.Background(), data); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Serialize Benchmarks
// ============================================================================

func BenchmarkSerialize(b *testing.B) {
	cards := benchCards(1000)
	for _, c := range All() {
		b.Run(c.Format(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := c.Serialize(context.Background(), cards); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCleanCell benchmarks per-cell normalization, run on every field.
func BenchmarkCleanCell(b *testing.B) {
	cells := []string{
		"Ahmad Saleh",
		"  padded value  ",
		"\ufeffName",
		"أحمد صالح",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, s := range cells {
			CleanCell(s)
		}
	}
}

// BenchmarkParseDate covers the first and last accepted layouts.
func BenchmarkParseDate(b *testing.B) {
	b.Run("iso", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			card.ParseDate("1990-01-02")
		}
	})
	b.Run("compact", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			card.ParseDate("19900102")
		}
	})
}
