package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	start := time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)
	return Document{
		Title:    "Ann's calendar",
		Location: time.FixedZone("MSK", 3*60*60),
		Items: []Item{
			{UID: "e1", Title: "Standup", Start: start, End: start.Add(30 * time.Minute), Type: "focus", Location: "Room 4"},
			{UID: "e2", Title: "Holiday", Start: start, End: start.Add(24 * time.Hour), AllDay: true, Type: "other"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" ICS ")
	require.NoError(t, err)
	assert.Equal(t, FormatICS, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVExporterRendersRows(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,start_time,end_time,all_day,type,location,description", lines[0])
	assert.Equal(t, "Standup,2024-05-10T10:00:00+03:00,2024-05-10T10:30:00+03:00,false,focus,Room 4,", lines[1])
}

func TestICSExporterRendersEvents(t *testing.T) {
	exporter := NewICSExporter("")
	exporter.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	out, err := exporter.Render(sampleDocument())
	require.NoError(t, err)
	body := string(out)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "PRODID:"+DefaultProductID)
	assert.Contains(t, body, "UID:e1")
	assert.Contains(t, body, "SUMMARY:Standup")
	assert.Contains(t, body, "DTSTART:20240510T070000Z")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20240510")
	assert.Contains(t, body, "LOCATION:Room 4")
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))

	empty, err := NewPDFExporter().Render(Document{})
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestRendererFor(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatPDF, FormatICS} {
		r, err := RendererFor(f)
		require.NoError(t, err)
		assert.Equal(t, string(f), r.Extension())
	}
}
