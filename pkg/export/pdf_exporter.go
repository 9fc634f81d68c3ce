package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

var pdfColumns = []struct {
	header string
	width  float64
}{
	{"Title", 60},
	{"Start", 38},
	{"End", 38},
	{"Type", 22},
	{"Location", 32},
}

const pdfTimeLayout = "2006-01-02 15:04"

// PDFExporter renders events into a simple agenda table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a PDF document with an optional title and one row per event.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	loc := doc.loc()
	for _, item := range doc.Items {
		start, end := item.Start.In(loc).Format(pdfTimeLayout), item.End.In(loc).Format(pdfTimeLayout)
		if item.AllDay {
			start, end = item.Start.In(loc).Format("2006-01-02"), "all day"
		}
		values := []string{item.Title, start, end, item.Type, item.Location}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, tr(values[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(doc.Items) == 0 {
		pdf.CellFormat(0, 7, "No events", "1", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
