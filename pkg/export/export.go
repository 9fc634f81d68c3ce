// Package export renders calendar events as downloadable files.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Format names a supported export format.
type Format string

// Supported formats.
const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
	FormatICS Format = "ics"
)

// Item is one event prepared for export.
type Item struct {
	UID         string
	Title       string
	Description string
	Location    string
	Type        string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Document is what every renderer receives.
type Document struct {
	Title    string
	Items    []Item
	Location *time.Location
}

// Renderer produces one file format.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatPDF, FormatICS:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// RendererFor returns the renderer for f.
func RendererFor(f Format) (Renderer, error) {
	switch f {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatICS:
		return NewICSExporter(""), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

func (d Document) loc() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}
