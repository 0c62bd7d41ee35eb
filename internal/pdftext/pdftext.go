// Package pdftext extracts plain text from PDF files, one string per page.
// Classification consumes the joined document text; extraction runs per page.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the text content of one PDF, split by page. Pages the library
// cannot decode are kept as empty strings so page numbers stay aligned with
// the source file.
type Document struct {
	Pages []string
}

// FullText joins all pages, used for document-level classification.
func (d *Document) FullText() string {
	return strings.Join(d.Pages, "\n")
}

// Source yields page texts for a PDF on disk. The interface exists so the
// ingest pipeline can be tested with canned text instead of binary fixtures.
type Source interface {
	Extract(path string) (*Document, error)
}

type fileSource struct{}

// NewFileSource returns a Source backed by ledongthuc/pdf.
func NewFileSource() Source {
	return fileSource{}
}

func (fileSource) Extract(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return readPages(reader)
}

// ExtractReader parses a PDF from an in-memory reader, used by the upload
// endpoint which never touches disk.
func ExtractReader(r readerAt, size int64) (*Document, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return readPages(reader)
}

type readerAt interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

func readPages(reader *pdf.Reader) (*Document, error) {
	doc := &Document{Pages: make([]string, 0, reader.NumPage())}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		doc.Pages = append(doc.Pages, text)
	}
	return doc, nil
}
