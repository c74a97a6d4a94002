package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/cardex/internal/card"
)

// maxCardBody bounds JSON card bodies: the largest photo plus the text fields.
const maxCardBody = card.MaxPhotoLength + 64<<10

// cardResponse is a stored card as returned by the API.
type cardResponse struct {
	ID uuid.UUID `json:"Id"`
	card.Wire
	LastUpdateAt time.Time `json:"LastUpdateAt"`
}

func newCardResponse(c card.Card) cardResponse {
	return cardResponse{ID: c.ID, Wire: c.Wire(), LastUpdateAt: c.LastUpdateAt}
}

type listResponse struct {
	Items      []cardResponse `json:"Items"`
	Page       int            `json:"Page"`
	PageSize   int            `json:"PageSize"`
	TotalCount int64          `json:"TotalCount"`
	TotalPages int            `json:"TotalPages"`
}

type deleteRequest struct {
	IDs   []uuid.UUID `json:"ids"`
	Force bool        `json:"force"`
}

type deleteResponse struct {
	Deleted []uuid.UUID `json:"deleted"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var body card.Wire
	if err := decodeJSON(w, r, maxCardBody, &body); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := s.service.Create(r.Context(), body)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newCardResponse(c))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, errInvalidID)
		return
	}

	c, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCardResponse(c))
}

// handleListCards serves a page of cards. Query: page, pageSize, search,
// orderBy, orderDirection, withPhoto.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	withPhoto, _ := strconv.ParseBool(q.Get("withPhoto"))
	query := card.ListQuery{
		Page:           parseIntParam(r, "page", 1),
		PageSize:       parseIntParam(r, "pageSize", card.DefaultPageSize),
		Search:         q.Get("search"),
		OrderBy:        q.Get("orderBy"),
		OrderDirection: q.Get("orderDirection"),
		WithPhoto:      withPhoto,
	}

	page, err := s.service.List(r.Context(), query)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]cardResponse, len(page.Cards))
	for i, c := range page.Cards {
		items[i] = newCardResponse(c)
	}
	writeJSON(w, r, http.StatusOK, listResponse{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.Total,
		TotalPages: page.TotalPages(),
	})
}

func (s *Server) handleDeleteCards(w http.ResponseWriter, r *http.Request) {
	var body deleteRequest
	if err := decodeJSON(w, r, 1<<20, &body); err != nil {
		respondError(w, r, err)
		return
	}

	deleted, err := s.service.Delete(r.Context(), body.IDs, body.Force)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deleteResponse{Deleted: deleted})
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
