package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

// DefaultProductID identifies the generating application in ICS files.
const DefaultProductID = "-//ego-calendar//EN"

// ICSExporter renders events as an iCalendar feed.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an ICS exporter. An empty productID uses
// DefaultProductID.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = DefaultProductID
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// ContentType implements Renderer.
func (e *ICSExporter) ContentType() string { return "text/calendar" }

// Extension implements Renderer.
func (e *ICSExporter) Extension() string { return "ics" }

// Render encodes one VEVENT per item.
func (e *ICSExporter) Render(doc Document) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, e.productID)
	if doc.Title != "" {
		cal.Props.SetText("X-WR-CALNAME", doc.Title)
	}

	stamp := e.now().UTC()
	loc := doc.loc()
	for _, item := range doc.Items {
		cal.Children = append(cal.Children, toVEvent(item, stamp, loc))
	}

	buf := &bytes.Buffer{}
	if err := ical.NewEncoder(buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func toVEvent(item Item, stamp time.Time, loc *time.Location) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, item.UID)
	ve.Props.SetText(ical.PropSummary, item.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	if item.AllDay {
		start := item.Start.In(loc)
		ve.Props.SetDate(ical.PropDateTimeStart, start)
		ve.Props.SetDate(ical.PropDateTimeEnd, start.AddDate(0, 0, 1))
	} else {
		ve.Props.SetDateTime(ical.PropDateTimeStart, item.Start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, item.End.UTC())
	}
	if item.Description != "" {
		ve.Props.SetText(ical.PropDescription, item.Description)
	}
	if item.Location != "" {
		ve.Props.SetText(ical.PropLocation, item.Location)
	}
	if item.Type != "" {
		ve.Props.SetText(ical.PropCategories, item.Type)
	}
	return ve
}
