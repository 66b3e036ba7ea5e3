package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RCoanda/feldspar/pkg/trace"
)

func sampleTraces() []*trace.Trace {
	activities := [][]string{
		{"register request", "decide", "reject request"},
		{"register request", "pay compensation"},
		{"register request", "check ticket", "decide", "pay compensation"},
	}
	out := make([]*trace.Trace, len(activities))
	for i, acts := range activities {
		events := make([]*trace.Event, len(acts))
		for j, act := range acts {
			ev := trace.NewEvent()
			ev.Set("concept:name", trace.StringValue(act))
			ev.Set("cost", trace.IntValue(int64(100*(j+1))))
			events[j] = ev
		}
		out[i] = trace.New(events, []trace.Attribute{
			{Key: "concept:name", Value: trace.StringValue(string(rune('1' + i)))},
		})
	}
	return out
}

func assertSameTraces(t *testing.T, got, want []*trace.Trace) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d traces, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Len() != want[i].Len() {
			t.Fatalf("trace %d has %d events, want %d", i, got[i].Len(), want[i].Len())
		}
		gid, _ := got[i].Get("concept:name")
		wid, _ := want[i].Get("concept:name")
		if !gid.Equal(wid) {
			t.Fatalf("trace %d id = %+v, want %+v", i, gid, wid)
		}
		for j := range want[i].Events {
			for _, key := range want[i].Events[j].Keys() {
				gv, ok := got[i].Events[j].Get(key)
				wv, _ := want[i].Events[j].Get(key)
				if !ok || !gv.Equal(wv) {
					t.Fatalf("trace %d event %d attr %q = %+v, want %+v", i, j, key, gv, wv)
				}
			}
		}
	}
}

func TestFileCachePopulatesEagerly(t *testing.T) {
	traces := sampleTraces()
	up := &counting[*trace.Trace]{src: FromSlice(nil, traces)}
	path := filepath.Join(t.TempDir(), "traces.dat")

	cached, err := FileCache[*trace.Trace](up, path)
	if err != nil {
		t.Fatal(err)
	}

	// Population happens at construction, before any consumer pull.
	if up.passes != 1 || up.pulls != len(traces) {
		t.Fatalf("upstream passes=%d pulls=%d, want 1 full pass", up.passes, up.pulls)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("cache file is empty after population")
	}

	for pass := 1; pass <= 2; pass++ {
		got, err := Collect(cached)
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		assertSameTraces(t, got, traces)
	}
	if up.passes != 1 {
		t.Errorf("upstream passes = %d, want 1", up.passes)
	}
}

func TestFileCacheExistingFileWins(t *testing.T) {
	traces := sampleTraces()
	path := filepath.Join(t.TempDir(), "traces.dat")

	if _, err := FileCache(FromSlice(nil, traces), path); err != nil {
		t.Fatal(err)
	}

	// A second pipeline instance pointed at the same file must serve
	// the file contents and never touch its own upstream.
	up := &broken[*trace.Trace]{}
	cached, err := FileCache[*trace.Trace](up, path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Collect(cached)
	if err != nil {
		t.Fatal(err)
	}
	assertSameTraces(t, got, traces)
	if up.passes != 0 {
		t.Errorf("upstream was pulled %d times, want 0", up.passes)
	}
}

func TestFileCacheInvalidTarget(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"directory", t.TempDir()},
		{"missing parent", filepath.Join(t.TempDir(), "no", "such", "dir", "c.dat")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileCache(FromSlice(nil, sampleTraces()), tt.path)
			if !errors.Is(err, ErrInvalidCacheTarget) {
				t.Fatalf("err = %v, want ErrInvalidCacheTarget", err)
			}
		})
	}
}

func TestFileCachePopulateFailureCleansUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.dat")
	_, err := FileCache[*trace.Trace](&broken[*trace.Trace]{}, path)
	if !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want errBroken", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial cache file was left behind: %v", err)
	}
}

func TestFileCacheAbandonedPass(t *testing.T) {
	traces := sampleTraces()
	path := filepath.Join(t.TempDir(), "traces.dat")
	cached, err := FileCache(FromSlice(nil, traces), path)
	if err != nil {
		t.Fatal(err)
	}

	// Abandoning a read pass must not disturb later full passes.
	for _, err := range cached.Iterate() {
		if err != nil {
			t.Fatal(err)
		}
		break
	}
	got, err := Collect(cached)
	if err != nil {
		t.Fatal(err)
	}
	assertSameTraces(t, got, traces)
}

func TestFileCacheMetadataPassthrough(t *testing.T) {
	meta := trace.NewMeta()
	meta.Attributes["creator"] = trace.StringValue("test")
	path := filepath.Join(t.TempDir(), "traces.dat")

	cached, err := FileCache(FromSlice(meta, sampleTraces()), path)
	if err != nil {
		t.Fatal(err)
	}
	if cached.Attributes() != meta {
		t.Error("file cache must defer to the original upstream metadata")
	}
}
