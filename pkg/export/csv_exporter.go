package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

var csvHeaders = []string{"title", "start_time", "end_time", "all_day", "type", "location", "description"}

// CSVExporter renders events as one CSV row each.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType implements Renderer.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV encoded bytes with timestamps in the document zone.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	loc := doc.loc()
	for _, item := range doc.Items {
		record := []string{
			item.Title,
			item.Start.In(loc).Format(time.RFC3339),
			item.End.In(loc).Format(time.RFC3339),
			strconv.FormatBool(item.AllDay),
			item.Type,
			item.Location,
			item.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
