package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formkit/pkg/schema"
)

const contactDoc = `
title: Contact
fields:
  - name: email
    type: email
    required: true
`

func TestLoader_FS(t *testing.T) {
	l := New(Options{FileSystem: fstest.MapFS{
		"forms/contact.yaml": {Data: []byte(contactDoc)},
	}})

	def, err := l.LoadDefinition(context.Background(), schema.SourceFromFS("forms/contact.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.Title != "Contact" {
		t.Fatalf("title = %q", def.Title)
	}
	if _, ok := def.Schema.Lookup("email"); !ok {
		t.Fatalf("email field missing")
	}
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contact.yaml")
	if err := os.WriteFile(path, []byte(contactDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := New(Options{}).Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != path {
		t.Fatalf("location = %q, want %q", doc.Location(), path)
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contact.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(contactDoc))
	}))
	defer srv.Close()

	src, err := schema.SourceFromURL(srv.URL + "/contact.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := New(Options{}).Load(context.Background(), src); err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}

	def, err := New(Options{AllowHTTP: true}).LoadDefinition(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.Title != "Contact" {
		t.Fatalf("title = %q", def.Title)
	}

	missing, _ := schema.SourceFromURL(srv.URL + "/missing.yaml")
	if _, err := New(Options{AllowHTTP: true}).Load(context.Background(), missing); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(Options{FileSystem: fstest.MapFS{"a.yaml": {Data: []byte(contactDoc)}}})
	if _, err := l.Load(ctx, schema.SourceFromFS("a.yaml")); err == nil {
		t.Fatalf("expected context error")
	}
}
