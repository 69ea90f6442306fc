package speech

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
			if header.Filename != "voice.webm" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"check my balance"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	text, err := client.Transcribe(context.Background(), "voice.webm", bytes.NewReader([]byte("fake-audio")))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "check my balance" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := new(bytes.Buffer)
		body.ReadFrom(r.Body)
		for _, want := range []string{`"model":"tts-1"`, `"voice":"nova"`, `"input":"hello"`} {
			if !strings.Contains(body.String(), want) {
				t.Errorf("request body missing %s: %s", want, body.String())
			}
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	audio, err := client.Synthesize(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio %q", audio)
	}
}

func TestProviderErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	if _, err := client.Transcribe(context.Background(), "voice.webm", strings.NewReader("x")); !errors.Is(err, ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "hello", "nova"); !errors.Is(err, ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestProviderUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key", time.Second)

	if _, err := client.Synthesize(context.Background(), "hello", "nova"); !errors.Is(err, ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}
