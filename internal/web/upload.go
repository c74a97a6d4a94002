package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/core"
)

// multipartSlack covers multipart framing around the file part, so that the
// service rather than the transport reports an oversized file.
const multipartSlack = 1 << 20

// readUpload reads the "file" part of a multipart request into memory.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (core.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)
	if err := r.ParseMultipartForm(limit + multipartSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.Upload{}, card.New(card.KindFileSizeExceeded, "limit %d", limit)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return core.Upload{}, &card.Error{Kind: card.KindNoFileUploaded, Err: err}
		}
		return core.Upload{}, errors.Join(errInvalidBody, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return core.Upload{}, &card.Error{Kind: card.KindNoFileUploaded}
		}
		return core.Upload{}, errors.Join(errInvalidBody, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Upload{}, errors.Join(errInvalidBody, err)
	}
	return core.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
