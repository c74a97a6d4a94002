package codec

// qr.go renders single business cards as QR code images and reads them back.
//
// The payload is the compact JSON form of card.Wire without the photo, so a
// symbol stays small enough to scan. Encoding refuses invalid cards before any
// image work happens.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/JonMunkholm/cardex/internal/card"
)

const (
	DefaultQRSize   = 300
	DefaultQRMargin = 1

	// MaxQRPixels caps the decoded bitmap of an uploaded image.
	MaxQRPixels = 4096 * 4096
)

// QR encodes and decodes card QR images.
type QR struct {
	Size   int // width and height of the rendered symbol in pixels
	Margin int // quiet zone in modules
}

// NewQR returns a QR codec with the default 300x300 size and margin 1.
func NewQR() *QR {
	return &QR{Size: DefaultQRSize, Margin: DefaultQRMargin}
}

// Encode validates w and renders its payload as a PNG image.
func (q *QR) Encode(ctx context.Context, w card.Wire) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := card.Validate(w); err != nil {
		return nil, card.Wrap(card.KindQRGenerationFailed, err)
	}

	w.Photo = ""
	payload, err := json.Marshal(w)
	if err != nil {
		return nil, card.Wrap(card.KindQRGenerationFailed, err)
	}

	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_MARGIN:        q.Margin,
		gozxing.EncodeHintType_CHARACTER_SET: "UTF-8",
	}
	matrix, err := qrcode.NewQRCodeWriter().Encode(string(payload), gozxing.BarcodeFormat_QR_CODE, q.Size, q.Size, hints)
	if err != nil {
		return nil, card.Wrap(card.KindQRGenerationFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rasterize(matrix)); err != nil {
		return nil, card.Wrap(card.KindQRGenerationFailed, err)
	}
	return buf.Bytes(), nil
}

// rasterize paints the module matrix into an RGBA bitmap.
func rasterize(m *gozxing.BitMatrix) *image.RGBA {
	width, height := m.GetWidth(), m.GetHeight()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	black := color.RGBA{A: 0xFF}
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if m.Get(x, y) {
				img.SetRGBA(x, y, black)
			} else {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

// Decode reads the text of the QR code in a PNG, JPEG or GIF image.
//
// An image without a locatable symbol is InvalidQrCodeImage. An image that
// cannot be loaded, or a symbol that fails checksum or format checks, is
// InvalidBusinessCardData, as is one larger than MaxQRPixels.
func (q *QR) Decode(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", card.Wrap(card.KindInvalidBusinessCardData, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxQRPixels {
		return "", card.New(card.KindInvalidBusinessCardData, "image is %dx%d pixels, limit %d", cfg.Width, cfg.Height, MaxQRPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", card.Wrap(card.KindInvalidBusinessCardData, err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", card.Wrap(card.KindInvalidBusinessCardData, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER:    true,
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return "", card.Wrap(card.KindInvalidQRCodeImage, err)
		}
		return "", card.Wrap(card.KindInvalidBusinessCardData, err)
	}

	text := result.GetText()
	if strings.TrimSpace(text) == "" {
		return "", &card.Error{Kind: card.KindInvalidQRCodeImage, Detail: "empty payload"}
	}
	return text, nil
}

// DecodeCard decodes the image and parses its payload as a card. A payload
// that is not a JSON card, or carries none of the card fields, is
// InvalidBusinessCardData.
func (q *QR) DecodeCard(ctx context.Context, data []byte) (card.Wire, error) {
	text, err := q.Decode(ctx, data)
	if err != nil {
		return card.Wire{}, err
	}

	var w card.Wire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return card.Wire{}, card.Wrap(card.KindInvalidBusinessCardData, err)
	}
	if !hasAnyField(w) {
		return card.Wire{}, &card.Error{Kind: card.KindInvalidBusinessCardData, Detail: "no card fields in payload"}
	}
	return w, nil
}

func hasAnyField(w card.Wire) bool {
	for _, v := range [...]string{w.Name, w.Email, w.PhoneNumber, w.DateOfBirth, w.Address} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
