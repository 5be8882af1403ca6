package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"becca-platform/internal/config"
)

func TestAddVoice_MultipartUpload(t *testing.T) {
	var gotName, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart parse: %v", err)
		}
		gotName = r.FormValue("name")
		if fhs := r.MultipartForm.File["files"]; len(fhs) == 1 {
			gotFile = fhs[0].Filename
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"voice_id": "v_42"})
	}))
	defer srv.Close()

	c, err := NewClient(config.SpeechConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	id, err := c.AddVoice(context.Background(), "Owner voice", strings.NewReader("audio-bytes"), "owner.mp3")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != "v_42" {
		t.Fatalf("unexpected voice id %q", id)
	}
	if gotName != "Owner voice" || gotFile != "owner.mp3" {
		t.Fatalf("unexpected upload fields: name=%q file=%q", gotName, gotFile)
	}
}

func TestAddVoice_RequiresNameAndSample(t *testing.T) {
	c, _ := NewClient(config.SpeechConfig{APIKey: "k"})
	if _, err := c.AddVoice(context.Background(), "", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, err := c.AddVoice(context.Background(), "n", nil, ""); err == nil {
		t.Fatalf("expected error for missing sample")
	}
}

func TestDeleteVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/voices/v_42" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(config.SpeechConfig{APIKey: "k", BaseURL: srv.URL})
	if err := c.DeleteVoice(context.Background(), "v_42"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
