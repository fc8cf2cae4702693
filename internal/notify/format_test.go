package notify

import (
	"strings"
	"testing"
)

func TestFormatDisclosure(t *testing.T) {
	d := sampleDisclosure()
	d.AttachmentLink = "https://www.idx.co.id/Portals/0/file.pdf"

	text := FormatDisclosure(d)

	for _, want := range []string{d.Title, d.StockCode, d.Date, string(d.Category), d.AttachmentLink} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted message missing %q:\n%s", want, text)
		}
	}
}

func TestFormatDisclosureNoAttachment(t *testing.T) {
	d := sampleDisclosure()
	d.AttachmentLink = ""

	text := FormatDisclosure(d)
	if strings.Contains(text, "Dokumen") {
		t.Errorf("message should omit the document section without an attachment:\n%s", text)
	}
}
