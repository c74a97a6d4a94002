// Package codec converts business cards to and from their exchange formats:
// delimited text (CSV), UTF-16 XML documents and QR code images.
//
// File codecs register themselves in a package registry keyed by format name
// so the import and export pipelines can select one by file extension or by
// the requested export format.
package codec

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/cardex/internal/card"
)

// Codec parses and serializes a bulk file format.
type Codec interface {
	Format() string      // lower-case format name, e.g. "csv"
	Extension() string   // file extension including the dot
	ContentType() string // media type of serialized output
	Parse(ctx context.Context, data []byte) ([]card.Wire, error)
	Serialize(ctx context.Context, cards []card.Card) ([]byte, error)
}

var (
	registry   = make(map[string]Codec)
	registryMu sync.RWMutex
)

// Register adds a codec to the registry.
// Panics if a codec with the same format is already registered.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := strings.ToLower(c.Format())
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("codec already registered: %s", key))
	}
	registry[key] = c
}

// Get returns the codec for a format name, case-insensitively.
func Get(format string) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[strings.ToLower(strings.TrimSpace(format))]
	return c, ok
}

// ForFile returns the codec matching the extension of name.
func ForFile(name string) (Codec, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil, false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, c := range registry {
		if c.Extension() == ext {
			return c, true
		}
	}
	return nil, false
}

// All returns the registered codecs sorted by format name.
func All() []Codec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Codec, 0, len(registry))
	for _, c := range registry {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Format() < result[j].Format()
	})
	return result
}

func init() {
	Register(CSV{})
	Register(XML{})
}
