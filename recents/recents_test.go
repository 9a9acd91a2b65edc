package recents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "recents.yaml"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func entry(i int) Entry {
	return Entry{
		Path:      fmt.Sprintf("/exports/%d.pdf", i),
		Name:      fmt.Sprintf("%d.pdf", i),
		CreatedAt: time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
		Pages:     i + 1,
	}
}

func TestAddAndList(t *testing.T) {
	s := newStore(t)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("new store has %d entries", len(got))
	}

	for i := 0; i < 3; i++ {
		if err := s.Add(entry(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	want := []Entry{entry(2), entry(1), entry(0)}
	if diff := cmp.Diff(want, s.List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	again := entry(0)
	again.HD = true
	if err := s.Add(again); err != nil {
		t.Fatalf("Add: %v", err)
	}
	want = []Entry{again, entry(2), entry(1)}
	if diff := cmp.Diff(want, s.List()); diff != "" {
		t.Errorf("re-adding should move the entry to the front (-want +got):\n%s", diff)
	}
}

func TestAddKeepsNewest(t *testing.T) {
	s := newStore(t)
	for i := 0; i < MaxEntries+5; i++ {
		if err := s.Add(entry(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	got := s.List()
	if len(got) != MaxEntries {
		t.Fatalf("got %d entries, want %d", len(got), MaxEntries)
	}
	if got[0].Path != entry(MaxEntries+4).Path || got[MaxEntries-1].Path != entry(5).Path {
		t.Errorf("wrong entries kept: first %s, last %s", got[0].Path, got[MaxEntries-1].Path)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := newStore(t)
	s.Add(entry(0))
	s.Add(entry(1))

	removed, err := s.Remove(entry(0).Path)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = s.Remove("/not/there.pdf")
	if err != nil || removed {
		t.Errorf("Remove of unknown path = %v, %v", removed, err)
	}
	if diff := cmp.Diff([]Entry{entry(1)}, s.List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("Clear left %d entries", len(got))
	}
}

func TestCorruptFile(t *testing.T) {
	s := newStore(t)
	os.MkdirAll(filepath.Dir(s.path), 0o755)
	if err := os.WriteFile(s.path, []byte("entries: [::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("corrupt file should read as empty, got %d entries", len(got))
	}
	if err := s.Add(entry(7)); err != nil {
		t.Fatalf("Add over corrupt file: %v", err)
	}
	if got := s.List(); len(got) != 1 || got[0].Path != entry(7).Path {
		t.Errorf("got %+v", got)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrNoPath) {
		t.Errorf("got %v, want ErrNoPath", err)
	}
}
