package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/playwright-community/playwright-go"
)

// Screenshot captures the page (or an element) to a PNG file under dir.
// The filename always gets a timestamp appended so repeated captures never
// overwrite each other. Returns the path of the written file.
func (s *Session) Screenshot(dir string, opts ScreenshotOptions) (string, error) {
	defer s.beginOp()()

	if opts.Filename == "" {
		opts.Filename = "screenshot.png"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(dir, timestampedName(opts.Filename, time.Now()))

	if opts.Selector != "" {
		element, err := s.Page.QuerySelector(opts.Selector)
		if err != nil {
			return "", fmt.Errorf("selector query failed: %w", err)
		}
		if element == nil {
			return "", fmt.Errorf("no element found matching selector: %s", opts.Selector)
		}
		if _, err := element.Screenshot(playwright.ElementHandleScreenshotOptions{
			Path: &path,
		}); err != nil {
			return "", fmt.Errorf("screenshot failed: %w", err)
		}
		return path, nil
	}

	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     &path,
		FullPage: &opts.FullPage,
	}); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	return path, nil
}

// ExportPDF renders the page to a PDF file under dir and verifies the
// result, returning the path and page count. Only headless chromium
// sessions can render PDFs.
func (s *Session) ExportPDF(dir string, opts PDFOptions) (string, int, error) {
	defer s.beginOp()()

	if s.Engine != "chromium" || !s.Headless {
		return "", 0, fmt.Errorf("PDF export requires a headless chromium session (session %q is %s, headless=%v)", s.Name, s.Engine, s.Headless)
	}

	if opts.Filename == "" {
		opts.Filename = "page.pdf"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, timestampedName(opts.Filename, time.Now()))

	if _, err := s.Page.PDF(playwright.PagePdfOptions{
		Path: &path,
	}); err != nil {
		return "", 0, fmt.Errorf("PDF export failed: %w", err)
	}

	// Verify the export is a readable PDF before reporting success
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("exported PDF failed verification: %w", err)
	}

	return path, pageCount, nil
}

// timestampedName inserts a timestamp between a filename's base and
// extension: "screenshot.png" becomes "screenshot_20240131_150405.png".
func timestampedName(filename string, now time.Time) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}
