package catalog

import (
	"context"
	"errors"
	"net/url"
	"sync"
)

var errBoom = errors.New("connection refused")

// fakeRemote is an in-memory Remote recording every call.
type fakeRemote struct {
	mu sync.Mutex

	items       []MediaItem
	listErr     error
	createErr   func(Draft) error
	downloadErr error
	// downloadResult overrides the computed counter when set.
	downloadResult *DownloadResult

	// listGate, when set, is received from before List answers.
	listGate chan []MediaItem
	// downloadGate, when set, holds IncrementDownload until closed.
	// downloadStarted is signalled once the call has been made.
	downloadGate    chan struct{}
	downloadStarted chan struct{}

	listCalls     []url.Values
	created       []Draft
	downloadCalls []ItemID
}

func (f *fakeRemote) List(ctx context.Context, params url.Values) ([]MediaItem, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, params)
	gate := f.listGate
	err := f.listErr
	items := cloneItems(f.items)
	f.mu.Unlock()

	if gate != nil {
		select {
		case items = <-gate:
		case <-ctx.Done():
			return []MediaItem{}, ctx.Err()
		}
	}
	if err != nil {
		return []MediaItem{}, err
	}
	return Project(items, FilterState{
		Tab:        tabFromParams(params),
		SearchText: params.Get(ParamQuery),
	}), nil
}

func (f *fakeRemote) Create(_ context.Context, d Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(d); err != nil {
			return err
		}
	}
	f.created = append(f.created, d)
	f.items = append(f.items, MediaItem{
		ID:    ItemID(d.Title),
		Title: d.Title,
		Kind:  d.Kind,
		Tags:  d.Tags,
	})
	return nil
}

func (f *fakeRemote) IncrementDownload(_ context.Context, id ItemID) (DownloadResult, error) {
	f.mu.Lock()
	f.downloadCalls = append(f.downloadCalls, id)
	gate, started := f.downloadGate, f.downloadStarted
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return DownloadResult{}, f.downloadErr
	}
	if f.downloadResult != nil {
		return *f.downloadResult, nil
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Downloads++
			n := f.items[i].Downloads
			return DownloadResult{ID: id, Downloads: &n}, nil
		}
	}
	return DownloadResult{}, errors.New("404 not found")
}

func (f *fakeRemote) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeRemote) lastList() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listCalls) == 0 {
		return nil
	}
	return f.listCalls[len(f.listCalls)-1]
}

func tabFromParams(params url.Values) Tab {
	if k := params.Get(ParamKind); k != "" {
		return Tab(k)
	}
	return TabAll
}

func intPtr(n int) *int { return &n }

func sampleItems() []MediaItem {
	return []MediaItem{
		{ID: "1", Title: "Neon Drift", Kind: KindMovie, Downloads: 5, Tags: []string{"cyberpunk", "action"}},
		{ID: "2", Title: "Skyline Stories", Kind: KindSeries, Downloads: 0, Tags: []string{"drama"}},
		{ID: "3", Title: "Blade Sakura", Kind: KindAnime, Downloads: 2, Tags: []string{"samurai", "sci-fi"}},
	}
}
