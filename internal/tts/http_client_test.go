package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientSynthesize_Success(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x04}
	var gotBody speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "tts-1", "nova", nil)
	result := c.Synthesize(context.Background(), "hola")
	if result.Status != StatusSynthesized {
		t.Fatalf("expected synthesized, got %s (%v)", result.Status, result.Err)
	}
	if result.Audio != base64.StdEncoding.EncodeToString(audio) {
		t.Fatalf("unexpected audio payload %q", result.Audio)
	}
	if gotBody.Model != "tts-1" || gotBody.Voice != "nova" || gotBody.Input != "hola" {
		t.Fatalf("unexpected request: %+v", gotBody)
	}
}

func TestHTTPClientSynthesize_ProviderErrorReducesToFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "tts-1", "nova", nil)
	result := c.Synthesize(context.Background(), "hola")
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if result.Err == nil {
		t.Fatalf("expected error detail for logging")
	}
	if result.Audio != "" {
		t.Fatalf("expected no audio on failure")
	}
}

func TestHTTPClientSynthesize_UnreachableProviderReducesToFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // el proveedor no responde

	c := NewHTTPClient(srv.URL, "k", "tts-1", "nova", nil)
	result := c.Synthesize(context.Background(), "hola")
	if result.Status != StatusFailed {
		t.Fatalf("expected failed on connection error, got %s", result.Status)
	}
}

func TestHTTPClientSynthesize_EmptyTextSkips(t *testing.T) {
	c := NewHTTPClient("http://unused.invalid", "k", "tts-1", "nova", nil)
	result := c.Synthesize(context.Background(), "   ")
	if result.Status != StatusSkipped {
		t.Fatalf("expected skipped for empty text, got %s", result.Status)
	}
}

func TestHTTPClientSynthesize_EmptyAudioIsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "tts-1", "nova", nil)
	result := c.Synthesize(context.Background(), "hola")
	if result.Status != StatusFailed {
		t.Fatalf("expected failed on empty audio body, got %s", result.Status)
	}
}

func TestDisabledAlwaysSkips(t *testing.T) {
	d := NewDisabled("not configured")
	result := d.Synthesize(context.Background(), "hola")
	if result.Status != StatusSkipped {
		t.Fatalf("expected skipped, got %s", result.Status)
	}
}
