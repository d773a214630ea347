package docgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	var received RenderRequest
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-word" {
			t.Errorf("renderer called with path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", ContentTypeDocx)
		w.Write([]byte("PK-fake-docx"))
	}))
	defer renderer.Close()

	c := NewClient(renderer.URL, 5*time.Second, nil)
	doc, err := c.Render(context.Background(), RenderRequest{
		FirstName: "Piet",
		SessionID: "s1",
		Poem:      "line1   with  spaces\nline2",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(doc) != "PK-fake-docx" {
		t.Errorf("document bytes = %q", doc)
	}

	if received.FirstName != "Piet" || received.SessionID != "s1" {
		t.Errorf("renderer received %+v", received)
	}
	if received.Poem != "line1 with spaces\nline2" {
		t.Errorf("poem not normalized before send: %q", received.Poem)
	}
}

func TestRenderErrorStatus(t *testing.T) {
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Template file not found"}`, http.StatusInternalServerError)
	}))
	defer renderer.Close()

	c := NewClient(renderer.URL, 5*time.Second, nil)
	_, err := c.Render(context.Background(), RenderRequest{FirstName: "a", SessionID: "b", Poem: "c"})
	if err == nil {
		t.Fatal("Render with 500 response did not return error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention status code", err)
	}
}

func TestRenderUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, nil)
	if _, err := c.Render(context.Background(), RenderRequest{FirstName: "a", SessionID: "b", Poem: "c"}); err == nil {
		t.Error("Render against unreachable renderer did not return error")
	}
}
