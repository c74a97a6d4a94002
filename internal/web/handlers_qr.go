package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/cardex/internal/card"
)

type base64Response struct {
	Base64 string `json:"base64"`
}

// handleGenerateQR renders the card in the body as a PNG QR code.
func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	var body card.Wire
	if err := decodeJSON(w, r, maxCardBody, &body); err != nil {
		respondError(w, r, err)
		return
	}

	png, err := s.service.GenerateQR(r.Context(), body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleDecodeQR reads a card from an uploaded QR image.
func (s *Server) handleDecodeQR(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, s.service.Options().MaxImageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	wire, err := s.service.DecodeQR(r.Context(), up)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, wire)
}

// handleConvertToBase64 turns an uploaded photo into a data URI.
func (s *Server) handleConvertToBase64(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, s.service.Options().MaxImageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	encoded, err := s.service.ConvertToBase64(r.Context(), up)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, base64Response{Base64: encoded})
}
