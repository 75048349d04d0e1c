// Package report derives the console report for a tracking run: the arrival
// digest and one entry per package, in the order the packages were given.
package report

import (
	"fmt"
	"strings"
	"time"

	"shiptrack/internal/features/tracking/domain"
)

// UnspecifiedSender is shown for annotations without a sender.
const UnspecifiedSender = "Unspecified sender"

// Digest counts the packages whose preferred date is today.
type Digest struct {
	Count    int
	Services []domain.Carrier
}

// Message returns the digest sentence.
func (d Digest) Message() string {
	names := make([]string, len(d.Services))
	for i, s := range d.Services {
		names[i] = s.String()
	}
	return fmt.Sprintf("There are %d package(s) arriving today from %s", d.Count, strings.Join(names, ", "))
}

// Entry is the text of one package in the report.
type Entry struct {
	StatusCategory string
	TrackingNumber string
	// Service is "{service}, {trackingClass}".
	Service string
	// DatePhrase is empty for delivered packages and packages without a date.
	DatePhrase string
	// Detail carries origin and annotation; empty when neither is known.
	Detail  string
	Summary string
}

// Report is the full output of a run.
type Report struct {
	// Digest is nil when nothing arrives today.
	Digest  *Digest
	Entries []Entry
}

// Build derives the report for already sorted packages. now fixes the current day.
func Build(packages []domain.TrackedPackage, now time.Time) Report {
	r := Report{Entries: make([]Entry, 0, len(packages))}

	var digest Digest
	seen := make(map[domain.Carrier]bool)

	for _, p := range packages {
		if date, ok := p.PreferredDate(); ok && sameDay(date, now) {
			digest.Count++
			if !seen[p.Service] {
				seen[p.Service] = true
				digest.Services = append(digest.Services, p.Service)
			}
		}
		r.Entries = append(r.Entries, buildEntry(p, now))
	}

	if digest.Count > 0 {
		r.Digest = &digest
	}
	return r
}

func buildEntry(p domain.TrackedPackage, now time.Time) Entry {
	return Entry{
		StatusCategory: p.StatusCategory,
		TrackingNumber: p.TrackingNumber,
		Service:        p.Service.String() + ", " + domain.StripMarkup(p.TrackingClass),
		DatePhrase:     datePhrase(p, now),
		Detail:         detail(p),
		Summary:        p.StatusSummary,
	}
}

// datePhrase renders "Predicted {date}" or "Expected {date}", with "today"
// replacing the date when it falls on the current day. An unparseable date
// is shown like a missing one.
func datePhrase(p domain.TrackedPackage, now time.Time) string {
	if p.IsDelivered() {
		return ""
	}

	date, ok := p.PreferredDate()
	if !ok {
		return ""
	}

	text, kind := p.PreferredDateText()
	if sameDay(date, now) {
		return string(kind) + " today"
	}
	return string(kind) + " " + text
}

func detail(p domain.TrackedPackage) string {
	var parts []string
	if p.Origin != "" {
		parts = append(parts, "Arriving from "+p.Origin)
	}
	if p.Annotation != nil {
		sender := p.Annotation.Sender
		if sender == "" {
			sender = UnspecifiedSender
		}
		parts = append(parts, "["+sender+"] "+p.Annotation.Description)
	}
	return strings.Join(parts, " ")
}

// sameDay compares calendar dates only.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
