package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMediaClient_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.EscapedPath() {
		case "/objects/uploads%2Fsong.mp3":
			_ = json.NewEncoder(w).Encode(MediaInfo{
				URL:             "https://cdn.example.com/song.mp3",
				SizeBytes:       4096,
				ContentType:     "audio/mpeg",
				DurationSeconds: 215,
			})
		case "/objects/broken":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewMediaClient(srv.URL+"/", "k", time.Second)
	info, err := c.Resolve(context.Background(), "uploads/song.mp3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if info.Key != "uploads/song.mp3" || info.DurationSeconds != 215 || info.SizeBytes != 4096 {
		t.Fatalf("info = %+v", info)
	}

	if _, err := c.Resolve(context.Background(), "missing"); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
	if _, err := c.Resolve(context.Background(), "broken"); err == nil || errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("broken: err = %v", err)
	}
}

func TestStaticMedia(t *testing.T) {
	info, err := StaticMedia{}.Resolve(context.Background(), "https://m/x.mp4")
	if err != nil || info.URL != "https://m/x.mp4" {
		t.Fatalf("info=%+v err=%v", info, err)
	}
}
