package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		typ      string
		location string
		region   string
		want     string
	}{
		{"Flood", "Pune", "India", "flood+Pune+India+when:1d"},
		{"Earthquake", "New Delhi", "India", "earthquake+New+Delhi+India+when:1d"},
		{"CYCLONE", "Chennai", "", "cyclone+Chennai+when:1d"},
	}

	for _, tt := range tests {
		if got := BuildQuery(tt.typ, tt.location, tt.region); got != tt.want {
			t.Errorf("BuildQuery(%q, %q, %q) = %q, want %q",
				tt.typ, tt.location, tt.region, got, tt.want)
		}
	}
}

func TestFeedQuery(t *testing.T) {
	want := "flood+OR+earthquake+OR+cyclone+OR+landslide+India+when:1d"
	if got := FeedQuery("India"); got != want {
		t.Errorf("FeedQuery(India) = %q, want %q", got, want)
	}
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Search results</title>
<item>
<title>Flood wreaks havoc in Pune, relief underway</title>
<link>https://example.com/flood-pune</link>
<description>Rescue teams deployed across the city.</description>
<pubDate>Mon, 31 Aug 2026 08:00:00 GMT</pubDate>
</item>
<item>
<title>Military exercise Desert Cyclone begins in Pune</title>
<link>https://example.com/desert-cyclone</link>
<description>Joint drill underway.</description>
</item>
</channel>
</rss>`

func TestGoogleNews_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("hl"); got != "en-IN" {
			t.Errorf("expected hl=en-IN, got %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer ts.Close()

	g := NewGoogleNews(ts.URL, "en-IN", "IN", "IN:en", 5*time.Second)

	headlines, err := g.Search(context.Background(), "flood+Pune+India+when:1d")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(headlines) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(headlines))
	}
	if headlines[0].Title != "Flood wreaks havoc in Pune, relief underway" {
		t.Errorf("unexpected first title: %q", headlines[0].Title)
	}
	if headlines[0].Link != "https://example.com/flood-pune" {
		t.Errorf("unexpected first link: %q", headlines[0].Link)
	}
	if headlines[0].Published.IsZero() {
		t.Error("expected parsed publish time")
	}
	// Entries without a pubDate fall back to fetch time
	if headlines[1].Published.IsZero() {
		t.Error("expected fallback publish time")
	}
}

func TestGoogleNews_Search_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer ts.Close()

	g := NewGoogleNews(ts.URL, "en-IN", "IN", "IN:en", 5*time.Second)

	if _, err := g.Search(context.Background(), "flood+Pune+when:1d"); err == nil {
		t.Fatal("expected error for HTTP 502, got nil")
	}
}

func TestGoogleNews_Search_BadFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not XML"))
	}))
	defer ts.Close()

	g := NewGoogleNews(ts.URL, "en-IN", "IN", "IN:en", 5*time.Second)

	if _, err := g.Search(context.Background(), "flood+Pune+when:1d"); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
