package core

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/cardex/internal/card"
)

// ConvertToBase64 turns an uploaded photo into a data URI suitable for the
// Photo field of a card.
func (s *Service) ConvertToBase64(ctx context.Context, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if up.Size() == 0 {
		return "", &card.Error{Kind: card.KindNoFileUploaded}
	}
	if up.Size() > s.opts.MaxImageSize {
		return "", card.New(card.KindFileSizeExceeded, "%d bytes, limit %d", up.Size(), s.opts.MaxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(up.Name))
	mime, ok := imageExtensions[ext]
	if !ok {
		return "", card.New(card.KindUnsupportedImageFormat, "extension %q", ext)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(up.Data)); err != nil {
		return "", card.Wrap(card.KindImageConversionError, err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(up.Data), nil
}
