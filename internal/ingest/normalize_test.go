package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, 11, 1, 9, 30, 0, 0, time.UTC)

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":      "BBCA",
		"JudulPengumuman": "Laporan Keuangan Interim Q3 2025",
		"TglPengumuman":   "2025-10-30T16:00:00",
		"NoPengumuman":    "PENG-00123/BEI/10-2025",
		"AttachmentUrl":   "/Portals/0/StaticData/ListedCompanies/file.pdf",
	}

	d, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if d.StockCode != "BBCA" {
		t.Errorf("stock code = %q, want BBCA", d.StockCode)
	}
	if d.Title != "Laporan Keuangan Interim Q3 2025" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Date != "2025-10-30 16:00:00" {
		t.Errorf("date = %q, want normalized form", d.Date)
	}
	if d.EventTime.IsZero() {
		t.Error("event time should be set when the date parses")
	}
	if !strings.HasPrefix(d.AttachmentLink, "https://www.idx.co.id/") {
		t.Errorf("attachment link = %q, want absolute IDX URL", d.AttachmentLink)
	}
	if d.FetchedAt != testNow {
		t.Errorf("fetched at = %v, want %v", d.FetchedAt, testNow)
	}
}

func TestNormalizeAlternateKeys(t *testing.T) {
	// Same record under snake_case keys must normalize identically.
	camel := RawItem{
		"KodeEmiten":      "TLKM",
		"JudulPengumuman": "Pemberitahuan RUPS Tahunan",
		"TglPengumuman":   "2025-10-30",
	}
	snake := RawItem{
		"kode_emiten": "TLKM",
		"judul":       "Pemberitahuan RUPS Tahunan",
		"tanggal":     "2025-10-30",
	}

	a, err := Normalize(camel, testNow)
	if err != nil {
		t.Fatalf("Normalize camel failed: %v", err)
	}
	b, err := Normalize(snake, testNow)
	if err != nil {
		t.Fatalf("Normalize snake failed: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("ids differ across key variants: %q vs %q", a.ID, b.ID)
	}
	if a.StockCode != b.StockCode || a.Title != b.Title || a.Date != b.Date {
		t.Errorf("fields differ across key variants: %+v vs %+v", a, b)
	}
}

func TestNormalizeMissingTitle(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":    "ANTM",
		"TglPengumuman": "2025-10-30",
	}

	d, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if d.Title != "No title" {
		t.Errorf("title = %q, want placeholder", d.Title)
	}
	if d.ID == "" {
		t.Error("id must still be derived with a placeholder title")
	}
}

func TestNormalizeMissingStockCodeAndTitle(t *testing.T) {
	raw := RawItem{
		"TglPengumuman": "2025-10-30",
		"foo":           "bar",
	}

	_, err := Normalize(raw, testNow)
	if err == nil {
		t.Fatal("expected error for record with neither stock code nor title")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %T, want *ParseError", err)
	}
}

func TestNormalizeUnparseableDateKeptVerbatim(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":      "UNVR",
		"JudulPengumuman": "Keterbukaan Informasi",
		"TglPengumuman":   "Senin, 30 Oktober 2025",
	}

	d, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if d.Date != "Senin, 30 Oktober 2025" {
		t.Errorf("date = %q, want raw value preserved", d.Date)
	}
	if !d.EventTime.IsZero() {
		t.Error("event time must stay zero when the date does not parse")
	}
}

func TestNormalizeIDFromAnnouncementNumber(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":      "BBRI",
		"JudulPengumuman": "Dividen Tunai",
		"NoPengumuman":    "PENG-99/BEI/2025",
	}

	d, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if d.ID != "BBRI_PENG-99_BEI_2025" {
		t.Errorf("id = %q", d.ID)
	}
}

func TestNormalizeIDFallbackDateTitle(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":      "BBRI",
		"JudulPengumuman": "Dividen Tunai Tahun Buku 2024 Final",
		"TglPengumuman":   "2025-10-30",
	}

	d, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	// Without an announcement number the id falls back to date plus a
	// truncated title, sanitized to the safe alphabet.
	if !strings.HasPrefix(d.ID, "BBRI_") {
		t.Errorf("id = %q, want stock code prefix", d.ID)
	}
	for _, r := range d.ID {
		if !(r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Fatalf("id %q contains unsafe rune %q", d.ID, r)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := RawItem{
		"KodeEmiten":      "ASII",
		"JudulPengumuman": "Laporan Bulanan Registrasi Pemegang Efek",
		"TglPengumuman":   "2025-10-30 12:00:00",
	}

	a, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("first Normalize failed: %v", err)
	}
	b, err := Normalize(raw, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Normalize failed: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("id not deterministic: %q vs %q", a.ID, b.ID)
	}
}
