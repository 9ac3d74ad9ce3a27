package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hexrift/nft-catalog/internal/handlers"
)

func (s *Server) CatalogRoutes(mux *chi.Mux, h *handlers.CatalogHandler) {
	mux.HandleFunc("GET /api/v1/home/new-items", h.NewItems)
	mux.HandleFunc("GET /api/v1/home/hot-collections", h.HotCollections)
	mux.HandleFunc("GET /api/v1/home/top-sellers", h.TopSellers)
	mux.HandleFunc("GET /api/v1/explore", h.Explore)
	mux.HandleFunc("POST /api/v1/explore/more", h.ExploreMore)
	mux.HandleFunc("GET /api/v1/authors/{authorId}", h.Author)
	mux.HandleFunc("POST /api/v1/authors/{authorId}/follow", h.ToggleFollow)
	mux.HandleFunc("GET /api/v1/authors/{authorId}/items", h.AuthorItems)
	mux.HandleFunc("GET /api/v1/items/{nftId}", h.ItemDetails)
}

func (s *Server) CommonRoutes(mux *chi.Mux) {
	mux.HandleFunc("GET /api/v1/health", healthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "ok",
		"time":    time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(resp)
}
