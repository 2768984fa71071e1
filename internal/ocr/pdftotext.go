package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfToText shells out to Poppler's pdftotext binary, the local fallback for
// scanned invoices that carry no embedded text layer.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// args builds the invocation: -layout keeps amount labels on the same line
// as their values, which the anchor patterns depend on; output goes to
// stdout as UTF-8 so Polish diacritics survive.
func (p *PdfToText) args(pdfPath string) []string {
	return []string{"-layout", "-enc", "UTF-8", "-q", pdfPath, "-"}
}

// ExtractText renders the whole document to text. The caller decides whether
// a failure is worth retrying; this only reports what the engine said.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, p.args(pdfPath)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", eris.Wrapf(err, "ocr: pdftotext on %s: %s", pdfPath, detail)
	}

	return stdout.String(), nil
}
