package notify

import (
	"fmt"
	"strings"

	"idx-disclosure-bot/internal/models"
)

// FormatDisclosure renders the rich notification message for one disclosure.
func FormatDisclosure(d *models.Disclosure) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%s*\n\n", d.Title))
	b.WriteString(fmt.Sprintf("📊 *Stock*\n%s\n\n", d.StockCode))
	b.WriteString(fmt.Sprintf("📅 *Tanggal*\n%s\n", d.Date))
	b.WriteString(fmt.Sprintf("\n%s *Kategori*\n%s\n", d.Category.Emoji(), d.Category))

	if d.AttachmentLink != "" {
		b.WriteString(fmt.Sprintf("\n🔗 *Dokumen PDF*\n[Lihat Dokumen](%s)\n\n_Tahan link dan pilih open in_\n", d.AttachmentLink))
	}

	return b.String()
}

// FormatLatest renders one entry of the /latest listing.
func FormatLatest(index int, d *models.Disclosure) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%d. %s*\n\n", index, d.Title))
	b.WriteString(fmt.Sprintf("📊 *Stock*\n%s\n\n", d.StockCode))
	b.WriteString(fmt.Sprintf("📅 *Tanggal*\n%s\n", d.Date))

	if d.AttachmentLink != "" {
		b.WriteString(fmt.Sprintf("\n🔗 *Lampiran*\n[Lihat Dokumen](%s)\n", d.AttachmentLink))
	}

	return b.String()
}
