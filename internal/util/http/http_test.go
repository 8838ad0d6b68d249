package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/munsellkit/internal/security"
)

func TestFetch(t *testing.T) {
	var gotUA, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("payload"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL+"/ok", FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch() = %q", data)
	}
	if gotUA != UserAgent() || !strings.HasPrefix(gotUA, "munsellkit/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Test header = %q", gotHeader)
	}

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Fetch(missing) error = %v, want HTTP 404", err)
	}

	_, err = Fetch(context.Background(), srv.URL+"/big", FetchOptions{MaxBytes: 10})
	if !errors.Is(err, security.ErrSizeLimit) {
		t.Errorf("Fetch(big) error = %v, want size limit", err)
	}
}
