package web

import (
	"net/http"

	"github.com/JonMunkholm/cardex/internal/core"
)

type healthResponse struct {
	Status  string                   `json:"status"`
	Imports core.UploadLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Imports: s.service.Limiter().Status(),
	})
}
