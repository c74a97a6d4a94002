package core

import (
	"context"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/logging"
)

// qrImageTypes lists the accepted QR image media types.
var qrImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
}

// imageExtensions maps accepted image extensions to their media type.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// acceptedQRImage checks the declared media type, falling back to the file
// extension when the client sent none or a generic one.
func acceptedQRImage(up Upload) bool {
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		return qrImageTypes[ct]
	}
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(up.Name))]
	return ok
}

// GenerateQR validates w and renders it as a PNG QR code.
func (s *Service) GenerateQR(ctx context.Context, w card.Wire) (_ []byte, err error) {
	ctx, span := s.startSpan(ctx, "cards.qr.encode")
	defer func() { endSpan(span, err) }()

	png, err := s.qr.Encode(ctx, w)
	if err != nil {
		qrOperations.WithLabelValues("encode", "error").Inc()
		return nil, err
	}
	qrOperations.WithLabelValues("encode", "ok").Inc()
	return png, nil
}

// DecodeQR reads a card from an uploaded QR image. The image must be a
// non-empty PNG, JPEG or GIF no larger than the image size limit.
func (s *Service) DecodeQR(ctx context.Context, up Upload) (_ card.Wire, err error) {
	ctx, span := s.startSpan(ctx, "cards.qr.decode",
		attribute.String("file.name", up.Name),
		attribute.Int64("file.bytes", up.Size()),
	)
	defer func() { endSpan(span, err) }()

	if up.Size() == 0 {
		return card.Wire{}, &card.Error{Kind: card.KindEmptyFile}
	}
	if up.Size() > s.opts.MaxImageSize {
		return card.Wire{}, card.New(card.KindFileSizeExceeded, "%d bytes, limit %d", up.Size(), s.opts.MaxImageSize)
	}
	if !acceptedQRImage(up) {
		return card.Wire{}, card.New(card.KindUnsupportedFileFormat, "%s", up.ContentType)
	}

	w, err := s.qr.DecodeCard(ctx, up.Data)
	if err != nil {
		qrOperations.WithLabelValues("decode", "error").Inc()
		logging.FromContext(ctx).Info("qr decode failed", "file", up.Name, "error", err)
		return card.Wire{}, err
	}
	qrOperations.WithLabelValues("decode", "ok").Inc()
	return w, nil
}
