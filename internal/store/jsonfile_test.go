package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rcliao/monchatbot/internal/model"
)

func newTestJSONStore(t *testing.T, maxSize int) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memoire.json")
	return NewJSONStore(Options{Path: path, MaxSize: maxSize}, nil), path
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	s, path := newTestJSONStore(t, 10)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("loading must not create the file")
	}
}

func TestJSONStoreUnusableFileIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"corrupt", `[{"question": "a", "respo`},
		{"not an array", `{"question": "a", "response": "b"}`},
		{"missing response", `[{"question": "a"}]`},
		{"missing question", `[{"response": "b"}]`},
		{"wrong type", `[{"question": 1, "response": "b"}]`},
		{"null element", `[null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "memoire.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			s := NewJSONStore(Options{Path: path}, nil)
			if s.Len() != 0 {
				t.Errorf("expected empty store, got %d entries", s.Len())
			}
		})
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 10)

	want := []model.Entry{
		{Question: "Quelle est la capitale de la France ?", Response: "Paris"},
		{Question: "bonjour", Response: "salut <toi> & moi"},
		{Question: "bonjour", Response: "doublon autorisé"},
	}
	for _, e := range want {
		s.Append(ctx, e)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	reopened := NewJSONStore(Options{Path: path, MaxSize: 10}, nil)
	entries, _ := reopened.Entries(ctx)
	if len(entries) != len(want) {
		t.Errorf("reopened store: expected %d entries, got %d", len(want), len(entries))
	}
}

func TestJSONStoreFileIsReadable(t *testing.T) {
	s, path := newTestJSONStore(t, 10)
	s.Append(context.Background(), model.Entry{Question: "Où est l'été ?", Response: "<ici>"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Où est l'été ?") {
		t.Errorf("expected unescaped UTF-8, got %s", text)
	}
	if !strings.Contains(text, "<ici>") {
		t.Errorf("expected unescaped HTML characters, got %s", text)
	}
	if !strings.Contains(text, "\n  {") {
		t.Errorf("expected indented output, got %s", text)
	}
}

func TestJSONStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 3)

	for i := 0; i < 7; i++ {
		s.Append(ctx, model.Entry{Question: fmt.Sprintf("q%d", i), Response: "r"})
		if s.Len() > 3 {
			t.Fatalf("store exceeded max size after append %d: %d", i, s.Len())
		}
	}

	got, _ := s.Entries(ctx)
	for i, want := range []string{"q4", "q5", "q6"} {
		if got[i].Question != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, got[i].Question)
		}
	}

	onDisk, _ := Load(path)
	if len(onDisk) != 3 || onDisk[0].Question != "q4" {
		t.Errorf("unexpected persisted entries: %+v", onDisk)
	}
}

func TestJSONStoreCapsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memoire.json")
	var entries []model.Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, model.Entry{Question: fmt.Sprintf("q%d", i), Response: "r"})
	}
	data, _ := model.EncodeEntries(entries)
	os.WriteFile(path, data, 0o644)

	s := NewJSONStore(Options{Path: path, MaxSize: 2}, nil)
	got, _ := s.Entries(context.Background())
	if len(got) != 2 || got[0].Question != "q3" || got[1].Question != "q4" {
		t.Errorf("expected newest two entries, got %+v", got)
	}
}

func TestJSONStoreEntriesIsSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestJSONStore(t, 10)
	s.Append(ctx, model.Entry{Question: "a", Response: "b"})

	snap, _ := s.Entries(ctx)
	snap[0].Response = "mutated"

	again, _ := s.Entries(ctx)
	if again[0].Response != "b" {
		t.Error("mutating a snapshot must not change the store")
	}
}

func TestJSONStorePersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewJSONStore(Options{Path: filepath.Join(dir, "memoire.json")}, nil)
	os.RemoveAll(dir)

	if err := s.Append(ctx, model.Entry{Question: "a", Response: "b"}); err != nil {
		t.Fatalf("append must swallow persistence errors, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected in-memory entry to survive, got %d", s.Len())
	}
	if err := s.Persist(); err == nil {
		t.Error("expected explicit Persist to report the failure")
	}
}

func TestJSONStoreInterruptedWriteLeavesPreviousFile(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 10)
	s.Append(ctx, model.Entry{Question: "a", Response: "b"})

	// A crash between temp write and rename leaves a stray partial temp file.
	stray := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"-crash.tmp")
	if err := os.WriteFile(stray, []byte(`[{"question": "x", "resp`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("previous file must stay readable: %v", err)
	}
	if len(got) != 1 || got[0].Question != "a" {
		t.Errorf("unexpected entries: %+v", got)
	}
}

func TestJSONStoreFailedSaveKeepsPreviousFile(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 10)
	if err := s.Append(ctx, model.Entry{Question: "a", Response: "b"}); err != nil {
		t.Fatal(err)
	}

	rename = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { rename = os.Rename })

	if err := s.Append(ctx, model.Entry{Question: "c", Response: "d"}); err != nil {
		t.Fatalf("append must swallow persistence errors, got %v", err)
	}
	if err := s.Persist(); err == nil {
		t.Fatal("expected Persist to report the failed rename")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("previous file must stay readable: %v", err)
	}
	if len(got) != 1 || got[0].Question != "a" {
		t.Errorf("expected the earlier save on disk, got %+v", got)
	}
	files, _ := os.ReadDir(filepath.Dir(path))
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".tmp") {
			t.Errorf("temp file left after failed save: %s", f.Name())
		}
	}
	if s.Len() != 2 {
		t.Errorf("expected both entries in memory, got %d", s.Len())
	}
}

func TestJSONStoreReadOnlyDirKeepsPreviousFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	ctx := context.Background()
	s, path := newTestJSONStore(t, 10)
	if err := s.Append(ctx, model.Entry{Question: "a", Response: "b"}); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Dir(path)
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	s.Append(ctx, model.Entry{Question: "c", Response: "d"})
	if err := s.Persist(); err == nil {
		t.Fatal("expected Persist to fail in a read-only directory")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("previous file must stay readable: %v", err)
	}
	if len(got) != 1 || got[0].Question != "a" {
		t.Errorf("expected the earlier save on disk, got %+v", got)
	}
}

func TestWriteFileAtomicReplacesTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memoire.json")
	if err := writeFileAtomic(path, []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte(`[{"question": "q", "response": "r"}]`)); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Response != "r" {
		t.Errorf("unexpected entries: %+v", got)
	}
}

func TestJSONStoreNoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 10)
	for i := 0; i < 3; i++ {
		s.Append(ctx, model.Entry{Question: fmt.Sprintf("q%d", i), Response: "r"})
	}

	files, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		var names []string
		for _, f := range files {
			names = append(names, f.Name())
		}
		t.Errorf("expected only the memory file, got %v", names)
	}
}

func TestJSONStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s, path := newTestJSONStore(t, 50)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(ctx, model.Entry{Question: fmt.Sprintf("q%d", i), Response: "r"})
			s.Entries(ctx)
		}(i)
	}
	wg.Wait()

	if s.Len() != 40 {
		t.Errorf("expected 40 entries, got %d", s.Len())
	}
	onDisk, err := Load(path)
	if err != nil {
		t.Fatalf("file must be parseable after concurrent writes: %v", err)
	}
	if len(onDisk) != 40 {
		t.Errorf("expected 40 persisted entries, got %d", len(onDisk))
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestJSONStore(t, 10)
	src.Append(ctx, model.Entry{Question: "a", Response: "1"})
	src.Append(ctx, model.Entry{Question: "b", Response: "2"})

	var buf bytes.Buffer
	if err := Export(ctx, src, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestSQLiteStore(t, 10)
	n, err := Import(ctx, dst, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	got, _ := dst.Entries(ctx)
	if len(got) != 2 || got[0].Question != "a" || got[1].Response != "2" {
		t.Errorf("unexpected imported entries: %+v", got)
	}

	if _, err := Import(ctx, dst, strings.NewReader(`[{"question": "x"}]`)); err == nil {
		t.Error("expected invalid import to fail")
	}
}

func TestJSONStoreStats(t *testing.T) {
	s, path := newTestJSONStore(t, 10)
	s.Append(context.Background(), model.Entry{Question: "a", Response: "b"})

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Backend != "json" || st.Path != path || st.Entries != 1 || st.MaxSize != 10 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.SizeBytes == 0 {
		t.Error("expected non-zero file size")
	}
}
