package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

// binServer is a minimal jsonbin-style endpoint: GET /latest wraps the stored
// document in {"record": ...}, PUT / replaces it.
type binServer struct {
	mu   sync.Mutex
	doc  []byte
	key  string
	gets int
	puts int
}

func (b *binServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Master-Key") != b.key {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/latest":
			b.gets++
			if b.doc == nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{"record": b.doc})
		case r.Method == http.MethodPut && r.URL.Path == "/":
			b.puts++
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			b.doc = raw
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
}

func newBin(t *testing.T, srv *httptest.Server, key string) *Bin {
	t.Helper()
	b, err := NewBin(config.BinConfig{URL: srv.URL, MasterKey: key}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBinSeedsEmptyRemote(t *testing.T) {
	t.Parallel()
	bs := &binServer{key: "k"}
	srv := httptest.NewServer(bs.handler())
	defer srv.Close()

	b := newBin(t, srv, "k")
	doc, err := b.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Users) != 0 {
		t.Fatalf("doc = %+v, want empty", doc)
	}
	if bs.puts != 1 {
		t.Fatalf("puts = %d, want the seed written back", bs.puts)
	}
}

func TestBinRoundTrip(t *testing.T) {
	t.Parallel()
	bs := &binServer{key: "k"}
	srv := httptest.NewServer(bs.handler())
	defer srv.Close()
	ctx := context.Background()

	b := newBin(t, srv, "k")
	doc := registry.NewDocument()
	doc.Users["10"] = registry.Operator{Login: "alice", Settings: registry.DefaultSettings()}
	if err := b.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Users["10"].Login != "alice" {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestBinWrongKeyIsUnavailable(t *testing.T) {
	t.Parallel()
	bs := &binServer{key: "k"}
	srv := httptest.NewServer(bs.handler())
	defer srv.Close()

	b := newBin(t, srv, "wrong")
	if _, err := b.Load(context.Background()); err == nil {
		t.Fatal("forbidden response must surface as an error")
	}
}
