// Package pdf extracts the text blobs used for similarity ranking from PDF documents.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF parses but yields no text.
var ErrNoText = errors.New("no text extracted from PDF")

// DOIPages is the number of leading pages searched for a DOI.
const DOIPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Texts holds the two text views of a document.
type Texts struct {
	// Best is the abstract plus introduction. Empty when the headings
	// could not be located.
	Best string
	// Full is the body with the references section removed.
	Full string
	// DOI is the first DOI found on the leading pages, if any.
	DOI string
}

// HasBest reports whether a best text was located.
func (t Texts) HasBest() bool {
	return t.Best != ""
}

// Extract parses a PDF and returns its best and full texts.
func Extract(r io.ReaderAt, size int64) (Texts, error) {
	pages, err := readPages(r, size)
	if err != nil {
		return Texts{}, err
	}
	return FromPages(pages)
}

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte) (Texts, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

// ExtractFile opens a PDF file and extracts its texts.
func ExtractFile(filePath string) (Texts, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Texts{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Texts{}, fmt.Errorf("checking PDF: %w", err)
	}

	texts, err := Extract(f, info.Size())
	if err != nil {
		return Texts{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return texts, nil
}

// FromPages builds Texts from already-extracted page text.
func FromPages(pages []string) (Texts, error) {
	raw := strings.Join(pages, "\n")
	if len(pages) > 0 {
		raw += "\n"
	}
	if strings.TrimSpace(raw) == "" {
		return Texts{}, ErrNoText
	}

	lead := pages
	if len(lead) > DOIPages {
		lead = lead[:DOIPages]
	}

	texts := Texts{
		Best: BestText(raw),
		Full: CleanFullText(raw),
		DOI:  FindDOI(strings.Join(lead, "\n")),
	}
	// A document that is nothing but a reference list has no usable text.
	if strings.TrimSpace(texts.Full) == "" {
		return Texts{}, ErrNoText
	}
	return texts, nil
}

// readPages returns the plain text of every page. Pages that fail to
// decode are skipped.
func readPages(r io.ReaderAt, size int64) (pages []string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("parsing PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parsing PDF: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// FindDOI finds a DOI in text.
func FindDOI(text string) string {
	matches := doiPattern.FindAllString(text, -1)
	for _, match := range matches {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
