// Package format renders fare-lookup results for the chat reply in one
// of three formats: a numbered list (default), a fixed-width table, or
// JSON. The formatter never reorders results; ordering is whatever the
// provider returned.
package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/safarlabs/railsathi/internal/extract"
	"github.com/safarlabs/railsathi/internal/fares"
)

// Criteria echoes the confirmed search slots in headers and the
// no-results message.
type Criteria struct {
	FromStation   string
	ToStation     string
	TravelDate    string
	PreferredTime string
	Budget        string
}

func (c Criteria) route() string {
	return c.FromStation + " → " + c.ToStation
}

// HumanDate renders a stored date as "02 January 2006 (Monday)",
// falling back to the raw string when it does not parse.
func HumanDate(date string) string {
	d, err := time.Parse(extract.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("02 January 2006 (Monday)")
}

// Render produces the reply body for the given format preference. An
// empty or unknown preference renders the list format.
func Render(pref string, records []fares.TrainRecord, c Criteria) (string, error) {
	switch strings.ToLower(pref) {
	case extract.FormatJSON:
		return renderJSON(records)
	case extract.FormatTable:
		return renderTable(records, c), nil
	default:
		return renderList(records, c), nil
	}
}

// NoResults builds the structured empty-result message echoing the
// criteria.
func NoResults(c Criteria) string {
	return fmt.Sprintf(
		"Is criteria par koi trains maujood nahi milin.\n\n"+
			"Route: %s\n"+
			"Date: %s | Time: %s | Budget: %s\n\n"+
			"Bara-e-meharbani mukhtalif date/time try karein ya 'reset' likhein.",
		c.route(), HumanDate(c.TravelDate), c.PreferredTime, c.Budget)
}

// resultsEnvelope wraps the record sequence for JSON output.
type resultsEnvelope struct {
	Results []fares.TrainRecord `json:"results"`
}

func renderJSON(records []fares.TrainRecord) (string, error) {
	if records == nil {
		records = []fares.TrainRecord{}
	}
	raw, err := json.MarshalIndent(resultsEnvelope{Results: records}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}
	return escapeNonASCII(string(raw)), nil
}

// escapeNonASCII rewrites every rune above 0x7F as a \uXXXX escape so
// the JSON body is pure ASCII regardless of transport encoding.
func escapeNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.String()
}

const tableRule = 110

func renderTable(records []fares.TrainRecord, c Criteria) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s | %s | %s | %s",
		c.route(), HumanDate(c.TravelDate), c.PreferredTime, c.Budget))
	lines = append(lines, strings.Repeat("-", tableRule))
	lines = append(lines, fmt.Sprintf("%s %s %s %s %s %s %s %s",
		pad("No", 3), pad("Train", 22), pad("Depart", 8), pad("Arrive", 8),
		pad("Economy", 12), pad("Business", 12), pad("AC", 10), pad("Stops", 8)))
	lines = append(lines, strings.Repeat("-", tableRule))
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("%s %s %s %s %s %s %s %s",
			pad(fmt.Sprint(i+1), 3), pad(r.Name, 22), pad(r.DepartureTime, 8),
			pad(r.ArrivalTime, 8), pad(r.EconomyFare, 12), pad(r.BusinessFare, 12),
			pad(r.ACFare, 10), pad(r.Stops, 8)))
	}
	lines = append(lines, strings.Repeat("-", tableRule))
	lines = append(lines, "Naye search ke liye 'reset' likhein. Kisi train ki tafseel ke liye number batayein.")
	return strings.Join(lines, "\n")
}

// pad truncates or right-pads to exactly n characters. Truncation is
// rune-based so a non-ASCII name is never cut mid-sequence.
func pad(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + strings.Repeat(" ", n-len(r))
}

func renderList(records []fares.TrainRecord, c Criteria) string {
	var b strings.Builder
	b.WriteString("Zail mein uplabdh options darj hain:\n\n")
	fmt.Fprintf(&b, "Route: %s\n", c.route())
	fmt.Fprintf(&b, "Date: %s | Time: %s | Budget: %s\n\n",
		HumanDate(c.TravelDate), c.PreferredTime, c.Budget)
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(&b, "   Waqt: %s → %s (%s)\n", r.DepartureTime, r.ArrivalTime, r.Duration)
		fmt.Fprintf(&b, "   Fares: Economy %s | Business %s | AC %s\n", r.EconomyFare, r.BusinessFare, r.ACFare)
		fmt.Fprintf(&b, "   Stops: %s\n\n", r.Stops)
	}
	b.WriteString("Naye search ke liye 'reset' likhein. Kisi train ki tafseel chahiye ho to number batayein.")
	return b.String()
}
