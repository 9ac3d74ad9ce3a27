// Package browse holds the presentation-layer state the renderer contract
// depends on: per-query-key listing views (fetch lifecycle + sort +
// pagination window + countdown tick) grouped into client sessions.
package browse

import (
	"context"
	"sync"
	"time"

	"github.com/hexrift/nft-catalog/internal/catalog"
	"github.com/hexrift/nft-catalog/internal/fetch"
)

// Clock supplies the current tick. Views take it injected so countdown
// formatting stays deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Fetcher loads the listing collection for a query key.
type Fetcher func(ctx context.Context, key string) ([]catalog.Listing, error)

// View binds one query key to a fetch controller, the active sort criterion
// and the pagination window. The canonical collection it holds is replaced
// wholesale by each successful fetch, never patched in place.
type View struct {
	mu      sync.Mutex
	key     string
	sort    catalog.SortCriterion
	window  catalog.Window
	ctrl    *fetch.Controller[[]catalog.Listing]
	fetcher Fetcher
	clock   Clock

	// Fetches run under the view's own context, never a request's: the view
	// outlives any single caller, and a client disconnect mid-fetch must not
	// strand it in the loading phase.
	fetchCtx    context.Context
	cancelFetch context.CancelFunc

	snapshot *catalog.Page
	stopTick chan struct{}
	tickDone chan struct{}
}

// NewView creates an idle view for key.
func NewView(key string, fetcher Fetcher, clock Clock) *View {
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		key:         key,
		window:      catalog.NewWindow(catalog.InitialVisibleCount),
		ctrl:        fetch.NewController[[]catalog.Listing](),
		fetcher:     fetcher,
		clock:       clock,
		fetchCtx:    ctx,
		cancelFetch: cancel,
	}
}

// Key returns the query key this view currently serves.
func (v *View) Key() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.key
}

// Refresh issues a fetch for the current key, superseding any request still
// in flight. The window resets: a new fetch replaces the collection identity.
func (v *View) Refresh() <-chan struct{} {
	v.mu.Lock()
	key := v.key
	fetcher := v.fetcher
	v.window = v.window.Reset()
	v.mu.Unlock()

	return v.ctrl.Load(v.fetchCtx, key, func(reqCtx context.Context) ([]catalog.Listing, error) {
		return fetcher(reqCtx, key)
	})
}

// Rekey switches the view to a new query key and refreshes, cancelling the
// old key's outstanding request. Sort and window reset with the key.
func (v *View) Rekey(key string) <-chan struct{} {
	v.mu.Lock()
	v.key = key
	v.sort = catalog.SortDefault
	v.mu.Unlock()
	return v.Refresh()
}

// Ensure fetches when the view has never loaded or its last fetch failed,
// waiting for the result no longer than ctx allows. A fetch already in
// flight is left to finish; the caller serves the loading state meanwhile.
func (v *View) Ensure(ctx context.Context) {
	switch v.ctrl.State().Phase {
	case fetch.PhaseIdle, fetch.PhaseError:
		select {
		case <-v.Refresh():
		case <-ctx.Done():
		}
	}
}

// SetSort switches the criterion. A change invalidates load-more progress:
// the window returns to its initial count.
func (v *View) SetSort(criterion catalog.SortCriterion) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort == criterion {
		return
	}
	v.sort = criterion
	v.window = v.window.Reset()
}

// LoadMore advances the window by the standard step. It is a no-op once
// every item is already visible; the return value reports whether the
// window moved.
func (v *View) LoadMore() bool {
	state := v.ctrl.State()
	v.mu.Lock()
	defer v.mu.Unlock()
	if state.Phase != fetch.PhaseSuccess || v.window.VisibleCount >= len(state.Data) {
		return false
	}
	v.window = v.window.Advance(catalog.LoadMoreStep)
	return true
}

// Page assembles the render-ready view model for the current tick.
func (v *View) Page() catalog.Page {
	state := v.ctrl.State()
	v.mu.Lock()
	criterion, window := v.sort, v.window
	v.mu.Unlock()
	return catalog.Assemble(state, criterion, window, v.clock.Now())
}

// StartAutoRefresh re-assembles the page snapshot on a fixed tick so
// countdown text stays current. The tick stops when the view closes.
func (v *View) StartAutoRefresh(interval time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopTick != nil {
		return
	}
	v.stopTick = make(chan struct{})
	v.tickDone = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				page := v.Page()
				v.mu.Lock()
				v.snapshot = &page
				v.mu.Unlock()
			case <-stop:
				return
			}
		}
	}(v.stopTick, v.tickDone)
}

// Snapshot returns the last ticked page, or a freshly assembled one when the
// ticker has not run yet.
func (v *View) Snapshot() catalog.Page {
	v.mu.Lock()
	snap := v.snapshot
	v.mu.Unlock()
	if snap != nil {
		return *snap
	}
	return v.Page()
}

// Close cancels any outstanding fetch and stops the tick. Safe to call more
// than once.
func (v *View) Close() {
	v.mu.Lock()
	stop, done := v.stopTick, v.tickDone
	v.stopTick, v.tickDone = nil, nil
	v.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	v.cancelFetch()
	v.ctrl.Close()
}
