package ocr

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lexipop/config"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestRemoteProviderRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %s", r.Header.Get("Content-Type"))
		}

		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image form file: %v", err)
		} else {
			f.Close()
			if hdr.Filename != "screenshot.png" {
				t.Errorf("filename = %s", hdr.Filename)
			}
		}

		rw.Header().Set("Content-Type", "application/json")
		rw.Write([]byte(`{"words":[
			{"text":"犬","x":10,"y":20,"w":30,"h":16},
			{"text":"猫","x":50,"y":20,"w":30,"h":16}
		]}`))
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL)
	if p.Name() != "remote" {
		t.Errorf("Name = %s", p.Name())
	}

	words, err := p.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0].Text != "犬" || words[0].X != 10 || words[0].H != 16 {
		t.Errorf("first word = %+v", words[0])
	}
}

func TestRemoteProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL)
	if _, err := p.Recognize(context.Background(), testImage()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestRemoteProviderBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL)
	if _, err := p.Recognize(context.Background(), testImage()); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestNewProvider(t *testing.T) {
	set := config.Settings{OCRProvider: "remote", OCREndpoint: "http://localhost:8765/ocr"}
	p, err := NewProvider(set)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "remote" {
		t.Errorf("Name = %s", p.Name())
	}

	set.OCRProvider = "tesseract"
	if _, err := NewProvider(set); err == nil {
		t.Error("expected an error for an unknown provider")
	}

	set.OCRProvider = "remote"
	set.OCREndpoint = ""
	if _, err := NewProvider(set); err == nil {
		t.Error("expected an error for a missing endpoint")
	}
}
