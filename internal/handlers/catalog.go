package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hexrift/nft-catalog/internal/browse"
	"github.com/hexrift/nft-catalog/internal/catalog"
	"github.com/hexrift/nft-catalog/internal/upstream"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

const (
	authorParamKey  = "authorId"
	itemParamKey    = "nftId"
	sessionHeader   = "X-Session-ID"
	viewExplore     = "explore"
	viewNewItems    = "new-items"
	viewAuthorItems = "author-items"
)

// CatalogHandler serves the browse views backed by the upstream marketplace
// source.
type CatalogHandler struct {
	upstream     *upstream.Client
	sessions     *browse.Manager
	clock        browse.Clock
	log          *logger.Logger
	carouselSpan int
	tick         time.Duration
}

func NewCatalogHandler(client *upstream.Client, sessions *browse.Manager, clock browse.Clock, log *logger.Logger, carouselSpan int, tick time.Duration) *CatalogHandler {
	return &CatalogHandler{
		upstream:     client,
		sessions:     sessions,
		clock:        clock,
		log:          log,
		carouselSpan: carouselSpan,
		tick:         tick,
	}
}

// session resolves the caller's browse session from the X-Session-ID header,
// minting one when absent, and echoes the id back so the client can keep it.
func (h *CatalogHandler) session(w http.ResponseWriter, r *http.Request) *browse.Session {
	s := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, s.ID)
	return s
}

// NewItems serves the home carousel of newly-listed assets. The offset query
// param positions the carousel window; the collection auto-refreshes its
// countdowns on the configured tick.
func (h *CatalogHandler) NewItems(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	view := s.View(viewNewItems, viewNewItems, func(ctx context.Context, _ string) ([]catalog.Listing, error) {
		return h.upstream.NewItems(ctx)
	})
	view.StartAutoRefresh(h.tick)
	view.Ensure(r.Context())

	page := view.Page()
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	resp := map[string]any{
		"page":   page,
		"slides": catalog.CarouselSlice(page.Items, offset, h.carouselSpan),
		"span":   h.carouselSpan,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "new items fetched successfully", resp)
}

// HotCollections serves the featured collection summaries.
func (h *CatalogHandler) HotCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.upstream.HotCollections(r.Context())
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	resp := map[string]any{
		"collections": collections,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "hot collections fetched successfully", resp)
}

// TopSellers serves the ranked seller profiles.
func (h *CatalogHandler) TopSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.upstream.TopSellers(r.Context())
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	resp := map[string]any{
		"sellers": sellers,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "top sellers fetched successfully", resp)
}

// Explore serves the session's paginated catalog view. A sort change resets
// load-more progress back to the initial window.
func (h *CatalogHandler) Explore(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	view := h.exploreView(s)
	view.SetSort(catalog.ParseSortCriterion(r.URL.Query().Get("sort")))
	view.Ensure(r.Context())

	resp := map[string]any{
		"page": view.Page(),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "explore items fetched successfully", resp)
}

// ExploreMore advances the session's explore window by the standard step.
// Once everything is visible it is a no-op.
func (h *CatalogHandler) ExploreMore(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	view := h.exploreView(s)
	view.Ensure(r.Context())
	advanced := view.LoadMore()

	resp := map[string]any{
		"advanced": advanced,
		"page":     view.Page(),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "explore window advanced", resp)
}

// Author serves one seller profile with the session-local follow state
// applied to the rendered follower count.
func (h *CatalogHandler) Author(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, authorParamKey)
	if authorID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "Author ID is required", nil)
		return
	}
	s := h.session(w, r)

	profile, err := h.upstream.Author(r.Context(), authorID)
	if err != nil {
		h.respondUpstreamError(w, r, err)
		return
	}
	if profile.ID == "" && profile.DisplayName == "Author" {
		RespondErrorJSON(w, r, http.StatusNotFound, ErrAuthorNotFound.Error(), "Author not found", nil)
		return
	}

	following, delta := s.FollowState(authorID)
	rendered := profile
	rendered.FollowerCount = profile.FollowerCount + delta
	if rendered.FollowerCount < 0 {
		rendered.FollowerCount = 0
	}
	resp := map[string]any{
		"author":       rendered,
		"is_following": following,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "author fetched successfully", resp)
}

// ToggleFollow flips the session-local follow flag. Nothing is persisted;
// the delta only shades the rendered follower count for this session.
func (h *CatalogHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, authorParamKey)
	if authorID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "Author ID is required", nil)
		return
	}
	s := h.session(w, r)
	following, delta := s.ToggleFollow(authorID)

	resp := map[string]any{
		"is_following":   following,
		"follower_delta": delta,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "follow state updated", resp)
}

// AuthorItems serves the asset collection of one seller as a paginated view.
// Navigating to a different author rekeys the view, cancelling any fetch
// still in flight for the previous author.
func (h *CatalogHandler) AuthorItems(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, authorParamKey)
	if authorID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "Author ID is required", nil)
		return
	}
	s := h.session(w, r)
	view := s.View(viewAuthorItems, authorID, h.fetchAuthorItems)
	view.Ensure(r.Context())

	resp := map[string]any{
		"page": view.Page(),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "author items fetched successfully", resp)
}

// ItemDetails serves one asset with its countdown text for the current tick.
func (h *CatalogHandler) ItemDetails(w http.ResponseWriter, r *http.Request) {
	nftID := chi.URLParam(r, itemParamKey)
	if nftID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "Item ID is required", nil)
		return
	}

	detail, err := h.upstream.ItemDetails(r.Context(), nftID)
	if err != nil {
		var upErr *upstream.Error
		if errors.As(err, &upErr) && upErr.Status == http.StatusNotFound {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrItemNotFound.Error(), upErr.Message, nil)
			return
		}
		h.respondUpstreamError(w, r, err)
		return
	}

	resp := map[string]any{
		"item":           detail,
		"countdown_text": catalog.Remaining(detail.AuctionEndUTC, h.clock.Now()),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "item details fetched successfully", resp)
}

func (h *CatalogHandler) exploreView(s *browse.Session) *browse.View {
	return s.View(viewExplore, viewExplore, func(ctx context.Context, _ string) ([]catalog.Listing, error) {
		return h.upstream.Explore(ctx)
	})
}

func (h *CatalogHandler) fetchAuthorItems(ctx context.Context, key string) ([]catalog.Listing, error) {
	return h.upstream.AuthorItems(ctx, key)
}

func (h *CatalogHandler) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		// Client went away; nothing useful to write.
		return
	}
	h.log.Warnw("upstream fetch failed", "path", r.URL.Path, "error", err)
	RespondErrorJSON(w, r, http.StatusBadGateway, ErrUpstream.Error(), err.Error(), nil)
}
