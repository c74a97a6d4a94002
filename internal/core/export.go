package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/codec"
	"github.com/JonMunkholm/cardex/internal/logging"
)

// ExportFile is a serialized set of cards ready to be sent to a client.
type ExportFile struct {
	Data        []byte
	ContentType string
	FileName    string
}

// exportFileName returns business_cards_<yyyyMMdd_HHmmss><ext>.
func exportFileName(t time.Time, ext string) string {
	return "business_cards_" + t.Format("20060102_150405") + ext
}

// Export serializes the non-deleted cards among ids, or all of them when ids
// is empty, in the named format ("csv" or "xml", case-insensitive).
//
// Having nothing to export is reported before the format is checked.
func (s *Service) Export(ctx context.Context, ids []uuid.UUID, format string) (file *ExportFile, err error) {
	ctx, span := s.startSpan(ctx, "cards.export",
		attribute.String("export.format", format),
		attribute.Int("export.requested", len(ids)),
	)
	defer func() { endSpan(span, err) }()

	cards, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, &card.Error{Kind: card.KindNoBusinessCardsFound}
	}

	c, ok := codec.Get(format)
	if !ok {
		return nil, card.New(card.KindUnsupportedExportFormat, "%q", format)
	}

	data, err := c.Serialize(ctx, cards)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", c.Format(), err)
	}

	exportsTotal.WithLabelValues(c.Format()).Inc()
	logging.FromContext(ctx).Info("export completed",
		"format", c.Format(),
		"cards", len(cards),
		"bytes", len(data),
	)

	return &ExportFile{
		Data:        data,
		ContentType: c.ContentType(),
		FileName:    exportFileName(s.now(), c.Extension()),
	}, nil
}
