// SPDX-License-Identifier: MPL-2.0

package winget

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/internal/testutil"
	"github.com/invowk/pkgtab/pkg/tabparse"

	"github.com/charmbracelet/log"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	return &fakeRunner{
		outputs: map[string]string{
			"list":          testutil.MustReadFixture(t, "list.txt"),
			"search vscode": testutil.MustReadFixture(t, "search_vscode.txt"),
			"search code":   testutil.MustReadFixture(t, "search_vscode.txt"),
		},
		errs: map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	return f.outputs[key], f.errs[key]
}

func (f *fakeRunner) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newCachedManager(t *testing.T, r Runner) (*Manager, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock(time.Time{})
	store, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), cache.FileName), cache.WithClock(clock))
	if err != nil {
		t.Fatalf("cache.Open() returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	m := NewManager(r, WithCache(store, 5*time.Second, 30*time.Minute), WithLogger(quietLogger()))
	return m, clock
}

func TestManager_List(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeRunner(t), WithLogger(quietLogger()))
	got, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	want := []tabparse.PackageRecord{
		{Name: "Git", ID: "Git.Git", Version: "2.43.0"},
		{Name: "Microsoft Visual Studio…", ID: "Microsoft.VisualStudio…", Version: "17.8.3"},
		{Name: "7-Zip 23.01 (x64)", ID: "7zip.7zip", Version: "23.01"},
		{Name: "Visual Studio Code", ID: "Microsoft.VisualStudioCode", Version: "1.85.0"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("List() =\n  %+v\nwant\n  %+v", got, want)
	}
}

func TestManager_Search(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeRunner(t), WithLogger(quietLogger()))
	got, err := m.Search(context.Background(), "vscode")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	want := []string{"VSCodium.VSCodium", "Microsoft.VisualStudioCode", "Microsoft.VisualStudioCode.Insiders"}
	if !slices.Equal(ids, want) {
		t.Errorf("Search() ids = %v, want %v", ids, want)
	}
	if got[1].Source != "winget" || got[1].Version != "1.85.0" {
		t.Errorf("unexpected record %+v", got[1])
	}

	if _, err := m.Search(context.Background(), "  "); !errors.Is(err, tabparse.ErrInvalidArgument) {
		t.Errorf("blank term: err = %v, want ErrInvalidArgument", err)
	}
}

func TestManager_CacheTTLs(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	m, clock := newCachedManager(t, r)
	ctx := context.Background()

	for range 3 {
		if _, err := m.List(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Search(ctx, "vscode"); err != nil {
			t.Fatal(err)
		}
	}
	if r.count("list") != 1 || r.count("search vscode") != 1 {
		t.Fatalf("calls = %v, want one of each", r.calls)
	}

	clock.Advance(5 * time.Second)
	c, err := m.CaptureList(ctx)
	if err != nil || c.Cached {
		t.Errorf("list capture after 5s: cached=%v err=%v, want fresh run", c.Cached, err)
	}
	c, err = m.CaptureSearch(ctx, "vscode")
	if err != nil || !c.Cached {
		t.Errorf("search capture after 5s: cached=%v err=%v, want cache hit", c.Cached, err)
	}

	clock.Advance(30 * time.Minute)
	if c, _ = m.CaptureSearch(ctx, "vscode"); c.Cached {
		t.Error("search capture after 30m should miss the cache")
	}
}

func TestManager_SearchWithPriority(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	m := NewManager(r, WithLogger(quietLogger()))

	got, err := m.SearchWithPriority(context.Background(), " code , microsoft")
	if err != nil {
		t.Fatalf("SearchWithPriority() returned error: %v", err)
	}
	var names []string
	for _, rec := range got {
		names = append(names, rec.Name)
	}
	want := []string{"Visual Studio Code - Insiders", "Visual Studio Code", "VSCodium"}
	if !slices.Equal(names, want) {
		t.Errorf("SearchWithPriority() = %v, want %v", names, want)
	}
	if r.count("search code") != 1 {
		t.Errorf("expected a search for the first keyword, calls = %v", r.calls)
	}

	if _, err := m.SearchWithPriority(context.Background(), " , "); !errors.Is(err, tabparse.ErrInvalidArgument) {
		t.Errorf("empty keywords: err = %v, want ErrInvalidArgument", err)
	}
}

func TestManager_BestMatch(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	r.outputs["search nothing"] = "Name  Id\n--------\n"
	m := NewManager(r, WithLogger(quietLogger()))

	best, ok, err := m.BestMatch(context.Background(), "code")
	if err != nil || !ok {
		t.Fatalf("BestMatch() = (%v, %v)", ok, err)
	}
	if best.ID != "Microsoft.VisualStudioCode.Insiders" {
		t.Errorf("BestMatch() id = %s", best.ID)
	}

	if _, ok, err := m.BestMatch(context.Background(), "nothing"); ok || err != nil {
		t.Errorf("BestMatch(nothing) = (%v, %v), want no match", ok, err)
	}
}

func TestManager_IsInstalled(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	r.outputs["search codium"] = "Name      Id                 Version\n" +
		"------------------------------------\n" +
		"VSCodium  VSCodium.VSCodium  1.85.1\n"
	r.outputs["search git"] = "Name  Id       Version\n" +
		"----------------------\n" +
		"Git   Git      2.43.0\n"
	m := NewManager(r, WithLogger(quietLogger()))
	ctx := context.Background()

	tests := []struct {
		term string
		want bool
	}{
		{"vscode", true},
		{"codium", false},
		{"git", true}, // "git.git" contains "git"
		{"unknown", false},
	}
	for _, tt := range tests {
		got, err := m.IsInstalled(ctx, tt.term)
		if err != nil {
			t.Fatalf("IsInstalled(%q) returned error: %v", tt.term, err)
		}
		if got != tt.want {
			t.Errorf("IsInstalled(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestIdsOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"Microsoft.VSCode", "microsoft.vscode", true},
		{"Git.Git", "git", true},
		{"git", "Git.Git", true},
		{"7zip.7zip", "Git.Git", false},
		{"", "Git.Git", false},
		{"Git.Git", "", false},
	}
	for _, tt := range tests {
		if got := idsOverlap(tt.a, tt.b); got != tt.want {
			t.Errorf("idsOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestManager_TolerantExitStatus(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	r.outputs["search zzz"] = "No package found matching input criteria.\n"
	r.errs["search zzz"] = &RunError{Args: []string{"search", "zzz"}, ExitCode: 1}
	r.errs["search boom"] = &RunError{Args: []string{"search", "boom"}, ExitCode: 1}
	m := NewManager(r, WithLogger(quietLogger()))

	got, err := m.Search(context.Background(), "zzz")
	if err != nil || len(got) != 0 {
		t.Errorf("Search(zzz) = (%v, %v), want no records and no error", got, err)
	}

	var runErr *RunError
	if _, err := m.Search(context.Background(), "boom"); !errors.As(err, &runErr) {
		t.Errorf("Search(boom) error = %v, want *RunError", err)
	}
}

func TestManager_InstallInvalidatesList(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	m, _ := newCachedManager(t, r)
	ctx := context.Background()

	if _, err := m.List(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Install(ctx, " 7zip.7zip ", `C:\Tools\7zip`); err != nil {
		t.Fatalf("Install() returned error: %v", err)
	}
	if _, err := m.List(ctx); err != nil {
		t.Fatal(err)
	}
	if n := r.count("list"); n != 2 {
		t.Errorf("list ran %d times, want 2 (install must invalidate)", n)
	}

	wantInstall := `install --accept-source-agreements --accept-package-agreements --id 7zip.7zip --silent --force --location C:\Tools\7zip`
	if r.count(wantInstall) != 1 {
		t.Errorf("calls = %v, want %q", r.calls, wantInstall)
	}

	if _, err := m.Install(ctx, "", ""); !errors.Is(err, tabparse.ErrInvalidArgument) {
		t.Errorf("blank id: err = %v, want ErrInvalidArgument", err)
	}
}

func TestManager_RunnerFailurePropagates(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	r.errs["list"] = ErrWingetNotFound
	m := NewManager(r, WithLogger(quietLogger()))
	if _, err := m.List(context.Background()); !errors.Is(err, ErrWingetNotFound) {
		t.Errorf("List() error = %v, want ErrWingetNotFound", err)
	}
}

func TestManager_InstallByKeyword(t *testing.T) {
	t.Parallel()

	r := newFakeRunner(t)
	r.outputs["search nothing"] = "Name  Id\n--------\n"
	m, _ := newCachedManager(t, r)
	ctx := context.Background()

	best, _, err := m.InstallByKeyword(ctx, "code, microsoft", "")
	if err != nil {
		t.Fatalf("InstallByKeyword() returned error: %v", err)
	}
	if best.ID != "Microsoft.VisualStudioCode.Insiders" {
		t.Errorf("installed %s, want the best match", best.ID)
	}
	want := "install --accept-source-agreements --accept-package-agreements --id Microsoft.VisualStudioCode.Insiders --silent --force"
	if r.count(want) != 1 {
		t.Errorf("calls = %v, want %q", r.calls, want)
	}

	if _, _, err := m.InstallByKeyword(ctx, "nothing", ""); !errors.Is(err, ErrNoMatch) {
		t.Errorf("no match: err = %v, want ErrNoMatch", err)
	}
	if _, _, err := m.InstallByKeyword(ctx, " , ", ""); !errors.Is(err, tabparse.ErrInvalidArgument) {
		t.Errorf("empty keywords: err = %v, want ErrInvalidArgument", err)
	}
	for _, c := range r.calls {
		if strings.HasPrefix(c, "install") && c != want {
			t.Errorf("unexpected install %q", c)
		}
	}
}

func TestManager_ConfigureSource(t *testing.T) {
	t.Parallel()

	const mirror = "https://mirrors.ustc.edu.cn/winget-source"
	const sources = "Name    Argument\n" +
		"---------------------------------------------\n" +
		"msstore https://storeedgefd.dsx.mp.microsoft.com/v9.0\n"

	t.Run("replaces the source", func(t *testing.T) {
		t.Parallel()
		r := newFakeRunner(t)
		r.outputs["source list"] = sources + "winget  https://cdn.winget.microsoft.com/cache\n"
		r.errs["source remove winget"] = &RunError{Args: []string{"source", "remove", "winget"}, ExitCode: 1}
		m, _ := newCachedManager(t, r)
		ctx := context.Background()

		if _, err := m.Search(ctx, "vscode"); err != nil {
			t.Fatal(err)
		}
		changed, err := m.ConfigureSource(ctx, DefaultSourceName, mirror)
		if err != nil || !changed {
			t.Fatalf("ConfigureSource() = (%v, %v), want a change", changed, err)
		}
		if r.count("source add winget "+mirror+" --trust-level trusted") != 1 {
			t.Errorf("calls = %v", r.calls)
		}
		if c, _ := m.CaptureSearch(ctx, "vscode"); c.Cached {
			t.Error("searches cached before the change should be dropped")
		}
	})

	t.Run("already configured", func(t *testing.T) {
		t.Parallel()
		r := newFakeRunner(t)
		r.outputs["source list"] = sources + "winget  " + strings.ToUpper(mirror) + "/\n"
		m := NewManager(r, WithLogger(quietLogger()))

		changed, err := m.ConfigureSource(context.Background(), DefaultSourceName, mirror+"/")
		if err != nil || changed {
			t.Errorf("ConfigureSource() = (%v, %v), want no change", changed, err)
		}
		if r.count("source remove winget") != 0 {
			t.Errorf("calls = %v, want only the listing", r.calls)
		}
	})

	t.Run("winget missing", func(t *testing.T) {
		t.Parallel()
		r := newFakeRunner(t)
		r.errs["source list"] = ErrWingetNotFound
		m := NewManager(r, WithLogger(quietLogger()))
		if _, err := m.ConfigureSource(context.Background(), DefaultSourceName, mirror); !errors.Is(err, ErrWingetNotFound) {
			t.Errorf("err = %v, want ErrWingetNotFound", err)
		}
	})

	t.Run("blank arguments", func(t *testing.T) {
		t.Parallel()
		m := NewManager(newFakeRunner(t), WithLogger(quietLogger()))
		for _, args := range [][2]string{{"", mirror}, {DefaultSourceName, "  "}} {
			if _, err := m.ConfigureSource(context.Background(), args[0], args[1]); !errors.Is(err, tabparse.ErrInvalidArgument) {
				t.Errorf("ConfigureSource(%q, %q) err = %v, want ErrInvalidArgument", args[0], args[1], err)
			}
		}
	})
}

type brokenStore struct{ cache.Nop }

func (brokenStore) Get(context.Context, cache.Kind, string, time.Duration) ([]byte, bool, error) {
	return nil, false, errors.New("database is locked")
}

// Not parallel: swaps the package-level default logger.
func TestNewManager_SilentWithoutLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(&buf))
	t.Cleanup(func() { log.SetDefault(prev) })

	m := NewManager(newFakeRunner(t), WithCache(brokenStore{}, time.Minute, time.Minute))
	if _, err := m.Search(context.Background(), "vscode"); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("manager without WithLogger wrote %q", buf.String())
	}
}
