// Package news is the boundary to the external headline source. The
// pipeline only depends on the Source interface; the production
// implementation talks to the Google News RSS search endpoint.
package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Headline is one entry returned by a news search.
type Headline struct {
	Title       string
	Link        string
	Description string
	Published   time.Time
}

// Source returns recent headlines for a composed query string.
type Source interface {
	Search(ctx context.Context, query string) ([]Headline, error)
}

// BuildQuery composes the corroboration search query from a disaster type
// and a location: lower-cased type, location with internal spaces replaced
// by '+', the region, and a one-day recency qualifier.
func BuildQuery(disasterType, location, region string) string {
	parts := []string{
		strings.ToLower(disasterType),
		strings.ReplaceAll(strings.TrimSpace(location), " ", "+"),
	}
	if region != "" {
		parts = append(parts, region)
	}
	parts = append(parts, "when:1d")
	return strings.Join(parts, "+")
}

// FeedQuery is the broad ingestion query scanning for any of the tracked
// disaster types in the configured region over the last day.
func FeedQuery(region string) string {
	q := "flood+OR+earthquake+OR+cyclone+OR+landslide"
	if region != "" {
		q += "+" + region
	}
	return q + "+when:1d"
}

// GoogleNews searches the Google News RSS endpoint.
type GoogleNews struct {
	baseURL  string
	language string
	country  string
	edition  string
	client   *http.Client
	parser   *gofeed.Parser
}

func NewGoogleNews(baseURL, language, country, edition string, timeout time.Duration) *GoogleNews {
	return &GoogleNews{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		language: language,
		country:  country,
		edition:  edition,
		client:   &http.Client{Timeout: timeout},
		parser:   gofeed.NewParser(),
	}
}

// Search fetches and parses the RSS results for query. The query string is
// already '+'-separated, so it is spliced into the URL as-is rather than
// URL-encoded.
func (g *GoogleNews) Search(ctx context.Context, query string) ([]Headline, error) {
	url := fmt.Sprintf("%s/rss/search?q=%s&hl=%s&gl=%s&ceid=%s",
		g.baseURL, query, g.language, g.country, g.edition)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "disaster-response/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	feed, err := g.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	headlines := make([]Headline, 0, len(feed.Items))
	now := time.Now()
	for _, item := range feed.Items {
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		headlines = append(headlines, Headline{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Published:   published,
		})
	}

	return headlines, nil
}
