package adapter

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	uspsAPIName  = "TrackV2"
	uspsRevision = "1"
)

// buildTrackRequest renders the TrackFieldRequest payload.
// Values are embedded verbatim; tracking numbers must be validated beforehand.
func (a *USPSAdapter) buildTrackRequest(trackingNumbers []string) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>`)
	fmt.Fprintf(&b, `<TrackFieldRequest USERID="%s">`, a.cfg.Username)
	fmt.Fprintf(&b, `<Revision>%s</Revision>`, uspsRevision)
	fmt.Fprintf(&b, `<ClientIp>%s</ClientIp>`, a.cfg.IP)
	fmt.Fprintf(&b, `<SourceId>%s</SourceId>`, a.cfg.App)
	for _, trackingNumber := range trackingNumbers {
		fmt.Fprintf(&b, `<TrackID ID="%s"><DestinationZipCode>%s</DestinationZipCode></TrackID>`, trackingNumber, a.zip)
	}
	b.WriteString(`</TrackFieldRequest>`)

	return b.String()
}

// trackURL embeds the payload as the XML query parameter of the API endpoint.
func (a *USPSAdapter) trackURL(payload string) (string, error) {
	u, err := url.Parse(a.cfg.APIBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid usps API base URL: %w", err)
	}

	q := u.Query()
	q.Set("API", uspsAPIName)
	q.Set("XML", payload)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
