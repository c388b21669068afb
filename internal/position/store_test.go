package position

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/dgallion1/slidedeck/internal/config"
	"github.com/dgallion1/slidedeck/internal/pathstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"7", 7, true},
		{" 12\n", 12, true},
		{"0", 0, true},
		{"", 0, false},
		{"seven", 0, false},
		{"3.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMemoryStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok := Read(ctx, s, "currentSlide"); ok {
		t.Fatal("expected unset key to report false")
	}
	if err := Write(ctx, s, "currentSlide", 4); err != nil {
		t.Fatalf("write: %v", err)
	}
	if n, ok := Read(ctx, s, "currentSlide"); !ok || n != 4 {
		t.Fatalf("Read = %d, %v; want 4, true", n, ok)
	}

	s.Set(ctx, "currentSlide", "garbage")
	if _, ok := Read(ctx, s, "currentSlide"); ok {
		t.Error("expected garbage value to report false")
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []string
	cancel := s.Subscribe("currentSlide", func(v string) { got = append(got, v) })
	other := s.Subscribe("otherKey", func(v string) { t.Errorf("unexpected notification %q", v) })
	defer other()

	s.Set(ctx, "currentSlide", "1")
	s.Set(ctx, "currentSlide", "2")
	cancel()
	cancel()
	s.Set(ctx, "currentSlide", "3")

	if strings.Join(got, ",") != "1,2" {
		t.Errorf("expected notifications 1,2; got %v", got)
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewFileStore(dir, discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	if err := Write(ctx, a, "currentSlide", 9); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(ctx, a, "currentSlide", 10); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	b, err := NewFileStore(dir, discardLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if n, ok := Read(ctx, b, "currentSlide"); !ok || n != 10 {
		t.Fatalf("Read = %d, %v; want 10, true", n, ok)
	}
	if _, ok, err := b.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("expected missing key to be unset without error, got ok=%v err=%v", ok, err)
	}
}

func TestFileStore_SubscribeSeesOtherWriter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reader, err := NewFileStore(dir, discardLogger())
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()
	writer, err := NewFileStore(dir, discardLogger())
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer writer.Close()

	got := make(chan string, 8)
	cancel := reader.Subscribe("currentSlide", func(v string) { got <- v })
	defer cancel()

	if err := Write(ctx, writer, "currentSlide", 5); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case v := <-got:
		if v != "5" {
			t.Errorf("expected notification 5, got %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file change notification")
	}
}

func TestFileStore_CloseIsIdempotent(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Subscribe("currentSlide", func(string) {})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// Subscribing after close is inert.
	s.Subscribe("currentSlide", func(string) {})()
}

// fakePathstore is a minimal in-memory /kv/{key} service.
func fakePathstore(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	values := map[string]any{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			var req pathstore.NodeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			values[key] = req.Value
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			v, ok := values[key]
			if !ok {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(pathstore.NodeResponse{Key: key, Value: v})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func TestRemoteStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	srv := fakePathstore(t, "secret")
	defer srv.Close()

	s := NewRemoteStore(pathstore.NewClient(srv.URL, "secret"))
	defer s.Close()

	if _, ok := Read(ctx, s, "currentSlide"); ok {
		t.Fatal("expected unset key to report false")
	}
	if err := Write(ctx, s, "currentSlide", 12); err != nil {
		t.Fatalf("write: %v", err)
	}
	if n, ok := Read(ctx, s, "currentSlide"); !ok || n != 12 {
		t.Fatalf("Read = %d, %v; want 12, true", n, ok)
	}
	s.Subscribe("currentSlide", func(string) { t.Error("remote store has no notifications") })()
}

func TestRemoteStore_AuthFailure(t *testing.T) {
	srv := fakePathstore(t, "secret")
	defer srv.Close()

	s := NewRemoteStore(pathstore.NewClient(srv.URL, "wrong"))
	defer s.Close()
	if err := Write(context.Background(), s, "currentSlide", 1); err == nil {
		t.Fatal("expected error for rejected write")
	}
	if _, ok := Read(context.Background(), s, "currentSlide"); ok {
		t.Error("expected read error to report false")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		store   string
		want    string
		wantErr bool
	}{
		{config.StoreMemory, "*position.MemoryStore", false},
		{config.StoreFile, "*position.FileStore", false},
		{config.StorePathstore, "*position.RemoteStore", false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		cfg := config.Config{PositionStore: tt.store, PositionDir: t.TempDir(), PathstoreURL: "http://localhost:0"}
		s, err := Open(cfg, discardLogger())
		if tt.wantErr {
			if err == nil {
				t.Errorf("Open(%q): expected error", tt.store)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Open(%q): %v", tt.store, err)
		}
		if got := typeName(s); got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.store, got, tt.want)
		}
		s.Close()
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*position.MemoryStore"
	case *FileStore:
		return "*position.FileStore"
	case *RemoteStore:
		return "*position.RemoteStore"
	}
	return "unknown"
}
