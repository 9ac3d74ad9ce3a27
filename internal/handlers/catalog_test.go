package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexrift/nft-catalog/internal/browse"
	"github.com/hexrift/nft-catalog/internal/cache"
	"github.com/hexrift/nft-catalog/internal/metrics"
	"github.com/hexrift/nft-catalog/internal/upstream"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeUpstream mimics the marketplace cloud functions.
func fakeUpstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/explore", func(w http.ResponseWriter, r *http.Request) {
		body := `[`
		for i := 0; i < 16; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"nftId": "n-%d", "title": "Item %d", "price": %d, "likes": %d}`, i, i, 16-i, i)
		}
		body += `]`
		w.Write([]byte(body))
	})
	mux.HandleFunc("/newItems", func(w http.ResponseWriter, r *http.Request) {
		end := testNow.Add(90 * time.Minute).Format(time.RFC3339)
		body := `[`
		for i := 0; i < 6; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"nftId": "new-%d", "expiryDate": %q}`, i, end)
		}
		body += `]`
		w.Write([]byte(body))
	})
	mux.HandleFunc("/hotCollections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "c-1", "title": "Pixel Pals", "code": "ERC-192"}]`))
	})
	mux.HandleFunc("/topSellers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"authorName": "Monica", "followers": 10, "sales": 12.5}]}`))
	})
	mux.HandleFunc("/authors", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("author") != "a-1" {
			http.Error(w, `{"message": "no such author"}`, http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data": [{"authorId": "a-1", "authorName": "Monica", "followers": 100,
			"nftCollection": [{"nftId": "n-1"}, {"nftId": "n-2"}]}]}`))
	})
	mux.HandleFunc("/itemDetails", func(w http.ResponseWriter, r *http.Request) {
		end := testNow.Add(2*time.Hour + 3*time.Minute + 4*time.Second).Format(time.RFC3339)
		fmt.Fprintf(w, `{"nftId": %q, "title": "Detail", "views": 9, "expiryDate": %q}`,
			r.URL.Query().Get("nftId"), end)
	})
	return mux
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	srv := httptest.NewServer(fakeUpstream())
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	m := metrics.New(prometheus.NewRegistry())
	clock := fixedClock{now: testNow}
	client := upstream.NewClient(srv.URL, cache.Noop{}, time.Second, log, m)
	sessions := browse.NewManager(time.Minute, clock, log, m)
	t.Cleanup(sessions.Close)

	h := NewCatalogHandler(client, sessions, clock, log, 4, time.Second)

	mux := chi.NewMux()
	mux.HandleFunc("GET /api/v1/home/new-items", h.NewItems)
	mux.HandleFunc("GET /api/v1/home/hot-collections", h.HotCollections)
	mux.HandleFunc("GET /api/v1/home/top-sellers", h.TopSellers)
	mux.HandleFunc("GET /api/v1/explore", h.Explore)
	mux.HandleFunc("POST /api/v1/explore/more", h.ExploreMore)
	mux.HandleFunc("GET /api/v1/authors/{authorId}", h.Author)
	mux.HandleFunc("POST /api/v1/authors/{authorId}/follow", h.ToggleFollow)
	mux.HandleFunc("GET /api/v1/authors/{authorId}/items", h.AuthorItems)
	mux.HandleFunc("GET /api/v1/items/{nftId}", h.ItemDetails)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, target, sessionID string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return w, envelope
}

func pageOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	page, ok := data["page"].(map[string]any)
	require.True(t, ok)
	return page
}

func TestExploreLoadMoreAndSortReset(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/explore", "")
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get("X-Session-ID")
	require.NotEmpty(t, session)

	page := pageOf(t, envelope)
	assert.Equal(t, float64(8), page["visible_count"])
	assert.Equal(t, float64(16), page["total_count"])
	assert.Equal(t, true, page["can_load_more"])
	assert.Len(t, page["items"], 8)

	// Load more advances the same session's window.
	w, envelope = doRequest(t, mux, http.MethodPost, "/api/v1/explore/more", session)
	require.Equal(t, http.StatusOK, w.Code)
	page = pageOf(t, envelope)
	assert.Equal(t, float64(12), page["visible_count"])

	// A sort change resets the window back to the initial count.
	w, envelope = doRequest(t, mux, http.MethodGet, "/api/v1/explore?sort=price_low_to_high", session)
	require.Equal(t, http.StatusOK, w.Code)
	page = pageOf(t, envelope)
	assert.Equal(t, float64(8), page["visible_count"])

	items := page["items"].([]any)
	first := items[0].(map[string]any)["listing"].(map[string]any)
	assert.Equal(t, "n-15", first["id"], "cheapest item first under price ascending")
}

func TestExploreMoreStopsAtEnd(t *testing.T) {
	mux := newTestRouter(t)

	w, _ := doRequest(t, mux, http.MethodGet, "/api/v1/explore", "")
	session := w.Header().Get("X-Session-ID")

	// 8 -> 12 -> 16, then a no-op.
	_, envelope := doRequest(t, mux, http.MethodPost, "/api/v1/explore/more", session)
	assert.Equal(t, true, envelope["data"].(map[string]any)["advanced"])
	_, envelope = doRequest(t, mux, http.MethodPost, "/api/v1/explore/more", session)
	assert.Equal(t, true, envelope["data"].(map[string]any)["advanced"])
	_, envelope = doRequest(t, mux, http.MethodPost, "/api/v1/explore/more", session)
	assert.Equal(t, false, envelope["data"].(map[string]any)["advanced"])

	page := pageOf(t, envelope)
	assert.Equal(t, false, page["can_load_more"])
	assert.Len(t, page["items"], 16)
}

func TestNewItemsCarousel(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/home/new-items?offset=4", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]any)
	slides := data["slides"].([]any)
	require.Len(t, slides, 4)
	first := slides[0].(map[string]any)["listing"].(map[string]any)
	assert.Equal(t, "new-4", first["id"])
	// Wraps around the six-item collection.
	last := slides[3].(map[string]any)["listing"].(map[string]any)
	assert.Equal(t, "new-1", last["id"])

	assert.Equal(t, "1h 30m 0s", slides[0].(map[string]any)["countdown_text"])
}

func TestHomeRankedViews(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/home/hot-collections", "")
	require.Equal(t, http.StatusOK, w.Code)
	collections := envelope["data"].(map[string]any)["collections"].([]any)
	require.Len(t, collections, 1)
	assert.Equal(t, "ERC-192", collections[0].(map[string]any)["chain_code"])

	w, envelope = doRequest(t, mux, http.MethodGet, "/api/v1/home/top-sellers", "")
	require.Equal(t, http.StatusOK, w.Code)
	sellers := envelope["data"].(map[string]any)["sellers"].([]any)
	require.Len(t, sellers, 1)
	assert.Equal(t, "Monica", sellers[0].(map[string]any)["display_name"])
}

func TestAuthorFollowToggleShadesFollowerCount(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/authors/a-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get("X-Session-ID")
	author := envelope["data"].(map[string]any)["author"].(map[string]any)
	assert.Equal(t, float64(100), author["follower_count"])
	assert.Equal(t, false, envelope["data"].(map[string]any)["is_following"])

	_, envelope = doRequest(t, mux, http.MethodPost, "/api/v1/authors/a-1/follow", session)
	assert.Equal(t, true, envelope["data"].(map[string]any)["is_following"])

	_, envelope = doRequest(t, mux, http.MethodGet, "/api/v1/authors/a-1", session)
	author = envelope["data"].(map[string]any)["author"].(map[string]any)
	assert.Equal(t, float64(101), author["follower_count"])
	assert.Equal(t, true, envelope["data"].(map[string]any)["is_following"])

	// Unfollow returns the rendered count to the upstream figure.
	_, _ = doRequest(t, mux, http.MethodPost, "/api/v1/authors/a-1/follow", session)
	_, envelope = doRequest(t, mux, http.MethodGet, "/api/v1/authors/a-1", session)
	author = envelope["data"].(map[string]any)["author"].(map[string]any)
	assert.Equal(t, float64(100), author["follower_count"])
}

func TestAuthorItems(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/authors/a-1/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := pageOf(t, envelope)
	assert.Len(t, page["items"], 2)
}

func TestItemDetailsCountdown(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/items/n-7", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]any)
	item := data["item"].(map[string]any)
	assert.Equal(t, "n-7", item["id"])
	assert.Equal(t, float64(9), item["view_count"])
	assert.Equal(t, "2h 3m 4s", data["countdown_text"])
}

func TestUpstreamFailureSurfacesAsBadGateway(t *testing.T) {
	mux := newTestRouter(t)

	w, envelope := doRequest(t, mux, http.MethodGet, "/api/v1/authors/missing", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "error", envelope["status"])
	apiErr := envelope["error"].(map[string]any)
	assert.Equal(t, "UPSTREAM_ERROR", apiErr["code"])
	assert.Equal(t, "no such author", apiErr["message"])
}
