package imageurl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestResolverURL(t *testing.T) {
	t.Parallel()

	r := New("https://cdn.example.com/portraits/", "")
	got, err := r.URL("ARIA", 3)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if want := "https://cdn.example.com/portraits/ARIA/3.png"; got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}

	again, _ := r.URL("ARIA", 3)
	if again != got {
		t.Fatalf("URL must be deterministic: %q vs %q", again, got)
	}

	if _, err := r.URL("  ", 1); err != ErrIDRequired {
		t.Fatalf("err = %v, want %v", err, ErrIDRequired)
	}
	if _, err := r.URL("ARIA", 0); err != ErrVariantRequired {
		t.Fatalf("err = %v, want %v", err, ErrVariantRequired)
	}
}

func TestResolverURL_DefaultBase(t *testing.T) {
	t.Parallel()

	got, err := Resolver{}.URL("BRAM", 1)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if want := DefaultBaseURL + "/BRAM/1.png"; got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestResolve_SubstitutesPlaceholderOnFailure(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/ok/1.png" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	r := New(srv.URL, "placeholder.png")
	p := NewProber()
	p.Client = srv.Client()
	ctx := context.Background()

	ok, _ := r.URL("ok", 1)
	if got, err := r.Resolve(ctx, p, ok); err != nil || got != ok {
		t.Fatalf("Resolve(ok) = %q, %v", got, err)
	}

	missing, _ := r.URL("missing", 1)
	got, err := r.Resolve(ctx, p, missing)
	if err == nil || got != "placeholder.png" {
		t.Fatalf("Resolve(missing) = %q, %v; want placeholder", got, err)
	}

	// Cached: no new request.
	before := hits.Load()
	_, _ = r.Resolve(ctx, p, missing)
	if hits.Load() != before {
		t.Fatalf("expected cached probe result")
	}
}
