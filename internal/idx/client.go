// Package idx fetches raw announcement records from the IDX website.
//
// The feed is served two ways depending on site revision: a JSON announcement
// API and a server-rendered HTML table. The client tries the API first and
// falls back to scraping the page; both paths produce the same opaque RawItem
// maps so downstream normalization stays source-agnostic.
package idx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"idx-disclosure-bot/internal/ingest"
)

const (
	defaultBaseURL      = "https://www.idx.co.id"
	announcementAPIPath = "/primary/NewsAnnouncement/GetAnnouncement?locale=id-id&pageNumber=1&pageSize=50"
	disclosurePagePath  = "/id/perusahaan-tercatat/pengumuman-emiten/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches disclosure announcements from IDX.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a client against the production IDX site.
func New(logger zerolog.Logger) *Client {
	return NewWithBaseURL(defaultBaseURL, logger)
}

// NewWithBaseURL creates a client against an alternate base URL (tests).
func NewWithBaseURL(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// FetchRawItems retrieves the latest announcements. A fetch error is
// transient: the caller waits for the next poll cycle.
func (c *Client) FetchRawItems(ctx context.Context) ([]ingest.RawItem, error) {
	items, err := c.fetchAPI(ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Announcement API fetch failed, falling back to page scrape")
	}

	items, scrapeErr := c.fetchPage(ctx)
	if scrapeErr != nil {
		return nil, fmt.Errorf("fetch announcements: %w", scrapeErr)
	}
	return items, nil
}

// fetchAPI reads the JSON announcement endpoint. The item array has moved
// between top-level keys across site revisions, so several are probed.
func (c *Client) fetchAPI(ctx context.Context) ([]ingest.RawItem, error) {
	body, err := c.get(ctx, c.baseURL+announcementAPIPath)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode announcement payload: %w", err)
	}

	for _, key := range []string{"Items", "Replies", "Results", "data"} {
		arr, ok := payload[key].([]any)
		if !ok {
			continue
		}
		items := make([]ingest.RawItem, 0, len(arr))
		for _, el := range arr {
			if m, ok := el.(map[string]any); ok {
				items = append(items, ingest.RawItem(m))
			}
		}
		c.logger.Debug().Int("count", len(items)).Str("key", key).Msg("Announcements decoded from API")
		return items, nil
	}

	return nil, fmt.Errorf("announcement payload has no known item array")
}

// fetchPage scrapes the disclosure page table. Expected column order is
// date, stock code, title; the first link in a row is the attachment.
func (c *Client) fetchPage(ctx context.Context) ([]ingest.RawItem, error) {
	body, err := c.get(ctx, c.baseURL+disclosurePagePath)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse disclosure page: %w", err)
	}

	var items []ingest.RawItem
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			return // header or malformed row
		}

		item := ingest.RawItem{
			"date":        strings.TrimSpace(cols.Eq(0).Text()),
			"kode_emiten": strings.TrimSpace(cols.Eq(1).Text()),
			"judul":       strings.TrimSpace(cols.Eq(2).Text()),
		}
		if href, ok := row.Find("a[href]").First().Attr("href"); ok {
			item["attachment"] = strings.TrimSpace(href)
		}
		items = append(items, item)
	})

	c.logger.Debug().Int("count", len(items)).Msg("Announcements scraped from page")
	return items, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("IDX request completed")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
