package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Sample</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <h1>A   Heading</h1>
  <p>First    paragraph
  spanning lines.</p>
  <script>var hidden = true;</script>
  <noscript>enable javascript</noscript>
</body>
</html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	text, err := New(nil).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if text != "A Heading First paragraph spanning lines." {
		t.Errorf("unexpected text: %q", text)
	}
	for _, leaked := range []string{"tracking", "hidden", "color: red", "enable javascript"} {
		if strings.Contains(text, leaked) {
			t.Errorf("non-visible content %q leaked into text: %q", leaked, text)
		}
	}
}

func TestExtract_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(nil).Extract(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestExtract_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := New(nil).Extract(context.Background(), srv.URL); err == nil {
		t.Error("expected error when the server is unreachable")
	}
}

func TestExtract_NoBodyElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain   text fragment"))
	}))
	defer srv.Close()

	text, err := New(nil).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "plain text fragment" {
		t.Errorf("unexpected text: %q", text)
	}
}
