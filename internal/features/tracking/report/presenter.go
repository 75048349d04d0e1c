package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Banner opens every console report.
const Banner = "Shiptrack starting..."

// Column widths of the per-package header line.
const (
	statusWidth   = 15
	trackingWidth = 25
	serviceWidth  = 30
)

// styles colour the report. Layout never depends on them.
type styles struct {
	banner  lipgloss.Style
	digest  lipgloss.Style
	number  lipgloss.Style
	date    lipgloss.Style
	detail  lipgloss.Style
	summary lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#6C6C6C")),
		digest:  r.NewStyle().Bold(true),
		number:  r.NewStyle().Bold(true),
		date:    r.NewStyle().Foreground(lipgloss.Color("#2196F3")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		summary: r.NewStyle().Faint(true),
	}
}

// Presenter writes reports to a terminal. Colour is dropped automatically
// when the writer is not a terminal.
type Presenter struct {
	out    io.Writer
	styles styles
}

// NewPresenter creates a Presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Banner prints the startup banner followed by a blank line.
func (p *Presenter) Banner() error {
	_, err := fmt.Fprintf(p.out, "%s\n\n", p.styles.banner.Render(Banner))
	return err
}

// Render prints the digest, when present, and every entry.
func (p *Presenter) Render(r Report) error {
	if r.Digest != nil {
		if _, err := fmt.Fprintf(p.out, "%s\n\n", p.styles.digest.Render(r.Digest.Message())); err != nil {
			return err
		}
	}

	for _, e := range r.Entries {
		if err := p.renderEntry(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) renderEntry(e Entry) error {
	// Pad before styling so escape codes do not count towards the width.
	header := fmt.Sprintf("%-*s | %s | %-*s | %s",
		statusWidth, e.StatusCategory,
		p.styles.number.Render(fmt.Sprintf("%-*s", trackingWidth, e.TrackingNumber)),
		serviceWidth, e.Service,
		p.styles.date.Render(e.DatePhrase),
	)
	if _, err := fmt.Fprintln(p.out, header); err != nil {
		return err
	}

	if e.Detail != "" {
		if _, err := fmt.Fprintln(p.out, p.styles.detail.Render(e.Detail)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(p.out, "%s\n\n", p.styles.summary.Render(e.Summary))
	return err
}
