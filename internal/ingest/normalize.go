// Package ingest converts raw announcement records into canonical disclosures
// and categorizes them by title keywords.
package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"idx-disclosure-bot/internal/models"
)

// RawItem is one upstream announcement record. The IDX feed does not guarantee
// a stable schema, so values are probed by candidate key lists.
type RawItem map[string]any

// ParseError marks a raw item that cannot be turned into a disclosure.
// The caller logs it and continues with the next item.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable announcement: %s", e.Reason)
}

const placeholderTitle = "No title"

// Candidate key lists per logical attribute, most common upstream spelling
// first. The IDX site has renamed fields across revisions.
var (
	stockCodeKeys  = []string{"KodeEmiten", "Kode_Emiten", "kode_emiten", "StockCode", "stock_code", "Code", "code"}
	titleKeys      = []string{"JudulPengumuman", "Judul", "judul", "PerihalPengumuman", "Title", "title"}
	dateKeys       = []string{"TglPengumuman", "Tgl_Pengumuman", "tanggal", "Date", "date"}
	announceNoKeys = []string{"NoPengumuman", "No_Pengumuman", "nomor", "AnnouncementNo"}
	attachmentKeys = []string{"AttachmentUrl", "AttachmentLink", "attachment", "PDFLink", "pdf_link", "Lampiran", "lampiran"}
)

// Date layouts tried in order; first match wins. An unmatched date is kept
// verbatim so ingestion never blocks on upstream formatting changes.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02 Jan 2006",
}

const normalizedDateLayout = "2006-01-02 15:04:05"

var idSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Normalize converts a raw item into a canonical disclosure. A record missing
// both a stock code and a title is rejected with *ParseError; any other
// missing attribute degrades to a safe default.
func Normalize(raw RawItem, now time.Time) (*models.Disclosure, error) {
	stockCode := strings.ToUpper(pickString(raw, stockCodeKeys...))
	title := pickString(raw, titleKeys...)

	if stockCode == "" && title == "" {
		return nil, &ParseError{Reason: "no stock code and no title"}
	}
	if title == "" {
		title = placeholderTitle
	}

	rawDate := pickString(raw, dateKeys...)
	date, eventTime := normalizeDate(rawDate)

	d := &models.Disclosure{
		ID:             deriveID(stockCode, pickString(raw, announceNoKeys...), date, title),
		StockCode:      stockCode,
		Title:          title,
		Date:           date,
		EventTime:      eventTime,
		Category:       Categorize(title),
		AttachmentLink: resolveAttachment(pickString(raw, attachmentKeys...)),
		FetchedAt:      now,
	}
	return d, nil
}

// deriveID builds the deterministic dedup key. The announcement number is the
// preferred discriminator; rows without one fall back to date plus a title
// prefix, matching how far upstream rows can be told apart at all.
func deriveID(stockCode, announceNo, date, title string) string {
	var id string
	if announceNo != "" {
		id = stockCode + "_" + announceNo
	} else {
		prefix := title
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		id = stockCode + "_" + date + "_" + prefix
	}
	return idSanitizer.ReplaceAllString(id, "_")
}

func normalizeDate(raw string) (string, time.Time) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(normalizedDateLayout), t
		}
	}
	// Unknown format: keep the upstream text verbatim.
	return raw, time.Time{}
}

const idxBaseURL = "https://www.idx.co.id"

func resolveAttachment(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return idxBaseURL + link
}

// pickString returns the first non-empty string value among the candidate
// keys, trimmed. Non-string values are ignored.
func pickString(m RawItem, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
