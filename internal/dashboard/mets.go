package dashboard

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PremisEvent is one preservation event recorded in a METS document's
// PREMIS metadata section.
type PremisEvent struct {
	Type              string
	Detail            string
	Outcome           string
	OutcomeDetailNote string
}

// PremisEvents extracts every PREMIS event from a METS XML document.
// The document is parsed leniently as HTML, which lowercases tag names
// and keeps namespace prefixes as part of the name, so selectors use
// the escaped lowercase form.
func PremisEvents(metsXML string) ([]PremisEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(metsXML))
	if err != nil {
		return nil, err
	}
	var events []PremisEvent
	doc.Find(`premis\:event`).Each(func(_ int, ev *goquery.Selection) {
		events = append(events, PremisEvent{
			Type:              strings.TrimSpace(ev.Find(`premis\:eventtype`).First().Text()),
			Detail:            strings.TrimSpace(ev.Find(`premis\:eventdetail`).First().Text()),
			Outcome:           strings.TrimSpace(ev.Find(`premis\:eventoutcome`).First().Text()),
			OutcomeDetailNote: strings.TrimSpace(ev.Find(`premis\:eventoutcomedetailnote`).First().Text()),
		})
	})
	return events, nil
}

// EventsByType filters events down to those whose type matches.
func EventsByType(events []PremisEvent, eventType string) []PremisEvent {
	var matched []PremisEvent
	for _, ev := range events {
		if ev.Type == eventType {
			matched = append(matched, ev)
		}
	}
	return matched
}
