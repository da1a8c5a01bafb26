package store

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

var intCols = view.Columns[int]{
	{
		ID: "n", Title: "N", Filterable: true, Sortable: true,
		Accessor: func(v int) string { return strconv.Itoa(v) },
		SortKey:  func(v int) view.SortKey { return view.IntKey(int64(v)) },
	},
}

func TestRingKeepsMostRecent(t *testing.T) {
	for _, capacity := range []int{1, 3, 7} {
		r := NewRing[int](capacity)
		total := capacity*3 + 1
		for i := 0; i < total; i++ {
			evicted := r.Push(i)
			if evicted != (i >= capacity) {
				t.Fatalf("cap %d push %d: evicted=%v", capacity, i, evicted)
			}
		}
		if r.Len() != capacity {
			t.Fatalf("expected len %d, got %d", capacity, r.Len())
		}
		items := r.Items()
		for i, v := range items {
			want := total - capacity + i
			if v != want {
				t.Fatalf("cap %d: expected item %d to be %d, got %d", capacity, i, want, v)
			}
		}
		if _, ok := r.At(capacity); ok {
			t.Fatalf("expected At out of range to fail")
		}
	}
}

func TestRingClear(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Clear()
	if r.Len() != 0 || len(r.Items()) != 0 {
		t.Fatalf("expected empty ring after clear")
	}
	r.Push(4)
	if v, _ := r.At(0); v != 4 {
		t.Fatalf("expected 4 after reuse, got %d", v)
	}
}

func TestStorePushBoundedAndViewExplicit(t *testing.T) {
	s := New("ints", 3, intCols)
	for i := 1; i <= 5; i++ {
		s.Push(i)
	}
	if s.Len() != 3 {
		t.Fatalf("expected raw len 3, got %d", s.Len())
	}
	if s.ViewLen() != 0 {
		t.Fatalf("expected view untouched until computed, got %d", s.ViewLen())
	}
	if !s.Stale() {
		t.Fatalf("expected stale view after push")
	}
	s.ComputeView(view.NewSearchState(1))
	got := s.View()
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Fatalf("expected view [3 4 5], got %v", got)
	}
	if s.Stale() {
		t.Fatalf("expected fresh view after compute")
	}
}

func TestStoreComputeViewFiltersAndSorts(t *testing.T) {
	s := New("ints", 10, intCols)
	s.PushAll([]int{12, 3, 21, 1})
	state := view.NewSearchState(1)
	p := "1"
	state.Pattern = &p
	state.Sort = &view.SortSpec{Col: 0, Dir: view.Asc}
	s.ComputeView(state)
	got := s.View()
	want := []int{1, 12, 21}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if v, ok := s.Get(1); !ok || v != 12 {
		t.Fatalf("expected Get(1)=12, got %d %v", v, ok)
	}
	if _, ok := s.Get(3); ok {
		t.Fatalf("expected Get out of range to fail")
	}
	if w := s.Window(1, 5); len(w) != 2 || w[0] != 12 {
		t.Fatalf("unexpected window %v", w)
	}

	s.Push(100)
	s.Refresh()
	if s.ViewLen() != 4 {
		t.Fatalf("expected refresh to reuse stored pattern, got %v", s.View())
	}
	if s.Search().PatternText() != "1" {
		t.Fatalf("expected stored pattern 1")
	}
}

func TestRefreshDoesNotPublishOverNewerSearch(t *testing.T) {
	var armed atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	cols := view.Columns[string]{
		{
			ID: "s", Title: "S", Filterable: true,
			Accessor: func(v string) string {
				if v == "aaa" && armed.CompareAndSwap(true, false) {
					close(entered)
					<-release
				}
				return v
			},
		},
	}
	s := New("strings", 10, cols)
	s.PushAll([]string{"aaa", "bbb"})
	old := view.NewSearchState(1)
	oldPattern := "aaa"
	old.Pattern = &oldPattern
	s.ComputeView(old)

	armed.Store(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Refresh()
	}()
	<-entered

	next := view.NewSearchState(1)
	nextPattern := "bbb"
	next.Pattern = &nextPattern
	s.ComputeView(next)
	close(release)
	<-done

	got := s.View()
	if len(got) != 1 || got[0] != "bbb" {
		t.Fatalf("expected view [bbb] for the newer search, got %v", got)
	}
	if s.Stale() {
		t.Fatalf("expected fresh view after compute")
	}
	if st := s.Search(); st.PatternText() != "bbb" {
		t.Fatalf("expected stored pattern bbb, got %q", st.PatternText())
	}
}

func TestStaleAfterDroppedCompute(t *testing.T) {
	s := New("ints", 3, intCols)
	s.Push(1)
	s.ComputeView(view.NewSearchState(1))
	if s.Stale() {
		t.Fatalf("expected fresh view after compute")
	}
	s.mu.Lock()
	s.searchGen++
	s.mu.Unlock()
	if !s.Stale() {
		t.Fatalf("expected stale view after a search change")
	}
	s.Refresh()
	if s.Stale() {
		t.Fatalf("expected refresh to catch up with the search state")
	}
}

func TestStoreConcurrentPushAndCompute(t *testing.T) {
	s := New("ints", 50, intCols)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Push(i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.ComputeView(view.NewSearchState(1))
			_ = s.View()
		}
	}()
	wg.Wait()
	if s.Len() != 50 {
		t.Fatalf("expected 50 raw records, got %d", s.Len())
	}
}

func TestSaturatingRate(t *testing.T) {
	r := NewRateTracker()
	if got := r.Rate("a", Counters{Up: 100, Down: 100}); got != (Counters{}) {
		t.Fatalf("expected zero rate for first sample, got %#v", got)
	}
	if got := r.Rate("a", Counters{Up: 150, Down: 130}); got.Up != 50 || got.Down != 30 {
		t.Fatalf("expected rate 50/30, got %#v", got)
	}
	if got := r.Rate("a", Counters{Up: 100, Down: 0}); got.Up != 0 || got.Down != 0 {
		t.Fatalf("expected saturated rate on counter reset, got %#v", got)
	}
	if SaturatingSub(0, ^uint64(0)) != 0 || SaturatingSub(^uint64(0), 0) != ^uint64(0) {
		t.Fatalf("unexpected saturating bounds")
	}
}

func conn(id, host string, up, down uint64) api.Connection {
	return api.Connection{
		ID:       id,
		Metadata: api.Metadata{Host: host, DestinationPort: "443"},
		Upload:   up,
		Download: down,
	}
}

var hostCols = view.Columns[*api.Connection]{
	{ID: "host", Title: "Host", Filterable: true, Sortable: true, Accessor: func(c *api.Connection) string { return c.HostPort() }},
}

func TestConnectionStoreDerivesRates(t *testing.T) {
	s := NewConnectionStore(ConnsBufferSize, hostCols)
	s.PushSnapshot([]api.Connection{conn("1", "a.com", 100, 1000)}, false)
	s.PushSnapshot([]api.Connection{conn("1", "a.com", 150, 900)}, false)
	raw := s.Raw()
	if len(raw) != 1 {
		t.Fatalf("expected one connection, got %d", len(raw))
	}
	if raw[0].UploadRate != 50 || raw[0].DownloadRate != 0 {
		t.Fatalf("expected rates 50/0, got %d/%d", raw[0].UploadRate, raw[0].DownloadRate)
	}
}

func TestConnectionStoreCaptureMode(t *testing.T) {
	s := NewConnectionStore(3, hostCols)
	s.PushSnapshot([]api.Connection{conn("1", "a.com", 1, 1), conn("2", "b.com", 1, 1)}, true)
	first := s.Raw()
	s.PushSnapshot([]api.Connection{conn("2", "b.com", 2, 2)}, true)
	raw := s.Raw()
	if len(raw) != 2 {
		t.Fatalf("expected active plus vanished row, got %d", len(raw))
	}
	if raw[0].ID != "2" || raw[0].Inactive {
		t.Fatalf("expected active connection first, got %#v", raw[0])
	}
	if raw[1].ID != "1" || !raw[1].Inactive {
		t.Fatalf("expected vanished connection marked inactive, got %#v", raw[1])
	}
	if first[0].Inactive {
		t.Fatalf("expected previously published rows to stay untouched")
	}

	s.PushSnapshot([]api.Connection{conn("3", "c.com", 0, 0), conn("4", "d.com", 0, 0), conn("5", "e.com", 0, 0)}, true)
	if got := s.Len(); got != 3 {
		t.Fatalf("expected capacity to bound capture history, got %d", got)
	}
	for _, c := range s.Raw() {
		if c.Inactive {
			t.Fatalf("expected active rows to take precedence over history")
		}
	}

	s.PushSnapshot([]api.Connection{conn("9", "z.com", 0, 0)}, false)
	if got := s.Len(); got != 1 {
		t.Fatalf("expected plain snapshot without capture, got %d", got)
	}
}

func TestConnectionSnapshotsWithActivePattern(t *testing.T) {
	s := NewConnectionStore(ConnsBufferSize, hostCols)
	state := view.NewSearchState(1)
	p := "bbb"
	state.Pattern = &p
	snapshots := [][]api.Connection{
		{conn("1", "aaa.com", 0, 0), conn("2", "bbb.com", 0, 0), conn("3", "ccc.com", 0, 0)},
		{conn("1", "aaa.com", 5, 5), conn("2", "bbb.com", 5, 5), conn("3", "ccc.com", 5, 5)},
		{conn("3", "ccc.com", 9, 9), conn("2", "bbb.com", 9, 9), conn("1", "aaa.com", 9, 9)},
	}
	for i, snap := range snapshots {
		s.PushSnapshot(snap, false)
		s.ComputeView(state)
		got := s.View()
		if len(got) != 1 || got[0].Metadata.Host != "bbb.com" {
			t.Fatalf("snapshot %d: expected only bbb.com, got %d rows", i, len(got))
		}
	}
}

func TestValue(t *testing.T) {
	var v Value[[]string]
	if _, ok := v.Get(); ok {
		t.Fatalf("expected unset value")
	}
	v.Set([]string{"a"})
	got, ok := v.Get()
	if !ok || len(got) != 1 || v.Generation() != 1 {
		t.Fatalf("unexpected value %v %v gen=%d", got, ok, v.Generation())
	}
}
