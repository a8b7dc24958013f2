package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical stored date form.
const DateLayout = "2006-01-02"

// cityToken matches one or two lowercase words of three letters or more.
const cityToken = `[a-z]{3,}(?:\s+[a-z]{3,})?`

var (
	// The destination group is a single token so trailing words like
	// "kal" or "jana" never ride along with the city name.
	routePattern    = regexp.MustCompile(`\b(` + cityToken + `)\s+se\s+([a-z]{3,})\b`)
	fromSePattern   = regexp.MustCompile(`\b(` + cityToken + `)\s+se\b`)
	fromEngPattern  = regexp.MustCompile(`\bfrom\s+(` + cityToken + `)\b`)
	bareCityPattern = regexp.MustCompile(`^(` + cityToken + `)$`)
	destJanaPattern = regexp.MustCompile(`\b(` + cityToken + `)\s+jana\b`)
	destEngPattern  = regexp.MustCompile(`\bto\s+(` + cityToken + `)\b`)

	dayFirstPattern  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	yearFirstPattern = regexp.MustCompile(`\b(\d{4})[/-](\d{2})[/-](\d{2})\b`)

	amountPattern = regexp.MustCompile(`\b(\d{3,6})\b`)

	economyPattern  = regexp.MustCompile(`\b(economy|sasta|cheap|budget)\b`)
	businessPattern = regexp.MustCompile(`\b(business|biz)\b`)
	acPattern       = regexp.MustCompile(`\b(ac|a/c)\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Keyword groups for time buckets, checked in bucket order
// subah -> dopahar -> raat. Evening and sham map to raat.
var (
	subahKeywords   = []string{"subah", "morning", "fajr", "jaldi", "savere", "savera", "sawere"}
	dopaharKeywords = []string{"dopahar", "afternoon", "zuhr", "noon", "din", "day", "dopehar", "duphar", "dopehr"}
	raatKeywords    = []string{"raat", "night", "late", "sham", "shaam", "evening", "maghrib"}
)

var acSubstrings = []string{"aircondition", "air-conditioned", "luxury", "expensive"}

// Rule is one pure extractor. Apply receives the normalized input, the
// current slot snapshot, and today's date, and returns zero or more
// candidate assignments.
type Rule struct {
	Name  string
	Apply func(text string, have Snapshot, today time.Time) Candidates
}

// Rules returns the extraction rules in their fixed application order.
// The order is part of the contract: route extraction runs before the
// single-field city rules so that "karachi se lahore" fills both slots
// in one pass.
func Rules() []Rule {
	return []Rule{
		{Name: "route", Apply: extractRoute},
		{Name: "from_city", Apply: extractFromCity},
		{Name: "to_city", Apply: extractDestCity},
		{Name: "travel_date", Apply: extractDate},
		{Name: "preferred_time", Apply: extractTimeBucket},
		{Name: "budget", Apply: extractBudget},
		{Name: "format_pref", Apply: extractFormat},
	}
}

// Engine applies the rule list to raw input.
type Engine struct {
	rules []Rule
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, used by tests for date rules.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine with the default rule order.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: Rules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every rule against the input and returns the merged
// candidates. Rules later in the order see earlier candidates as already
// filled, so a route match suppresses the single-field city rules within
// the same pass. Extract never fails; unparsable input yields an empty map.
func (e *Engine) Extract(input string, have Snapshot) Candidates {
	text := Normalize(input)
	if text == "" {
		return Candidates{}
	}

	today := e.now()
	merged := Candidates{}
	for _, r := range e.rules {
		for field, value := range r.Apply(text, have.with(merged), today) {
			if _, ok := merged[field]; !ok {
				merged[field] = value
			}
		}
	}
	return merged
}

// Normalize lowercases the input and collapses whitespace runs to a
// single space.
func Normalize(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.ToLower(s), " "))
}

// BareToken reports whether the whole normalized input is a single city
// token and returns it title-cased. The dialogue layer uses this to
// read a bare city name as the answer to the open question when the
// departure rule is already gated off.
func BareToken(input string) (string, bool) {
	m := bareCityPattern.FindStringSubmatch(Normalize(input))
	if m == nil {
		return "", false
	}
	return titleLastToken(m[1]), true
}

// IsPast reports whether the stored-form date is strictly before today.
// Unparsable dates are treated as past so they are never stored.
func IsPast(date string, today time.Time) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return true
	}
	y, m, day := today.Date()
	return d.Before(time.Date(y, m, day, 0, 0, 0, 0, today.Location()))
}

// with overlays in-pass candidates onto the snapshot.
func (s Snapshot) with(c Candidates) Snapshot {
	out := s
	if v, ok := c[FieldFromStation]; ok && out.FromStation == "" {
		out.FromStation = v
	}
	if v, ok := c[FieldToStation]; ok && out.ToStation == "" {
		out.ToStation = v
	}
	if v, ok := c[FieldTravelDate]; ok && out.TravelDate == "" {
		out.TravelDate = v
	}
	if v, ok := c[FieldBudget]; ok && out.Budget == "" {
		out.Budget = v
	}
	if v, ok := c[FieldPreferredTime]; ok && out.PreferredTime == "" {
		out.PreferredTime = v
	}
	if v, ok := c[FieldFormatPref]; ok && out.FormatPref == "" {
		out.FormatPref = v
	}
	return out
}

// extractRoute handles "karachi se lahore" style route-in-one-utterance
// input. It fires only while both city slots are unset.
func extractRoute(text string, have Snapshot, _ time.Time) Candidates {
	if have.FromStation != "" || have.ToStation != "" {
		return nil
	}
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return Candidates{
		FieldFromStation: titleLastToken(m[1]),
		FieldToStation:   titleLastToken(m[2]),
	}
}

// extractFromCity handles "<city> se", "from <city>", and a bare city
// name covering the whole input.
func extractFromCity(text string, have Snapshot, _ time.Time) Candidates {
	if have.FromStation != "" {
		return nil
	}
	for _, p := range []*regexp.Regexp{fromSePattern, fromEngPattern, bareCityPattern} {
		if m := p.FindStringSubmatch(text); m != nil {
			return Candidates{FieldFromStation: titleLastToken(m[1])}
		}
	}
	return nil
}

// extractDestCity handles "<city> jana" and "to <city>".
func extractDestCity(text string, have Snapshot, _ time.Time) Candidates {
	if have.ToStation != "" {
		return nil
	}
	for _, p := range []*regexp.Regexp{destJanaPattern, destEngPattern} {
		if m := p.FindStringSubmatch(text); m != nil {
			return Candidates{FieldToStation: titleLastToken(m[1])}
		}
	}
	return nil
}

// extractDate resolves relative date words and absolute date patterns.
// Absolute candidates must be real calendar dates not before today;
// anything else is discarded silently.
func extractDate(text string, have Snapshot, today time.Time) Candidates {
	if have.TravelDate != "" {
		return nil
	}

	if strings.Contains(text, "aaj") || strings.Contains(text, "today") {
		return Candidates{FieldTravelDate: today.Format(DateLayout)}
	}
	if strings.Contains(text, "kal") || strings.Contains(text, "tomorrow") {
		return Candidates{FieldTravelDate: today.AddDate(0, 0, 1).Format(DateLayout)}
	}
	if strings.Contains(text, "parso") || strings.Contains(text, "day after") {
		return Candidates{FieldTravelDate: today.AddDate(0, 0, 2).Format(DateLayout)}
	}

	if m := dayFirstPattern.FindStringSubmatch(text); m != nil {
		if d, ok := calendarDate(m[3], m[2], m[1], today); ok {
			return Candidates{FieldTravelDate: d}
		}
	}
	if m := yearFirstPattern.FindStringSubmatch(text); m != nil {
		if d, ok := calendarDate(m[1], m[2], m[3], today); ok {
			return Candidates{FieldTravelDate: d}
		}
	}
	return nil
}

// calendarDate validates year/month/day digits as a real, non-past date
// and returns the stored form.
func calendarDate(year, month, day string, today time.Time) (string, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if mo < 1 || mo > 12 || d < 1 {
		return "", false
	}
	dt := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, today.Location())
	// time.Date normalizes overflow (Feb 31 -> Mar 3), which is not a
	// real calendar date for our purposes.
	if dt.Year() != y || dt.Month() != time.Month(mo) || dt.Day() != d {
		return "", false
	}
	ty, tm, td := today.Date()
	if dt.Before(time.Date(ty, tm, td, 0, 0, 0, 0, today.Location())) {
		return "", false
	}
	return dt.Format(DateLayout), true
}

// extractTimeBucket maps keywords to one of the three buckets, first
// match wins in bucket order.
func extractTimeBucket(text string, have Snapshot, _ time.Time) Candidates {
	if have.PreferredTime != "" {
		return nil
	}
	if containsAny(text, subahKeywords) {
		return Candidates{FieldPreferredTime: TimeSubah}
	}
	if containsAny(text, dopaharKeywords) {
		return Candidates{FieldPreferredTime: TimeDopahar}
	}
	if containsAny(text, raatKeywords) {
		return Candidates{FieldPreferredTime: TimeRaat}
	}
	return nil
}

// extractBudget prefers the largest 3-6 digit amount over any class
// keyword present in the same utterance.
func extractBudget(text string, have Snapshot, _ time.Time) Candidates {
	if have.Budget != "" {
		return nil
	}

	if amounts := amountPattern.FindAllString(text, -1); len(amounts) > 0 {
		max := 0
		for _, a := range amounts {
			n, err := strconv.Atoi(a)
			if err == nil && n > max {
				max = n
			}
		}
		return Candidates{FieldBudget: fmt.Sprintf("Rs. %d", max)}
	}

	if economyPattern.MatchString(text) {
		return Candidates{FieldBudget: BudgetEconomy}
	}
	if businessPattern.MatchString(text) {
		return Candidates{FieldBudget: BudgetBusiness}
	}
	if acPattern.MatchString(text) || containsAny(text, acSubstrings) {
		return Candidates{FieldBudget: BudgetAC}
	}
	return nil
}

// extractFormat checks for literal format keywords: table, then json,
// then list.
func extractFormat(text string, have Snapshot, _ time.Time) Candidates {
	if have.FormatPref != "" {
		return nil
	}
	for _, f := range []string{FormatTable, FormatJSON, FormatList} {
		if strings.Contains(text, f) {
			return Candidates{FieldFormatPref: f}
		}
	}
	return nil
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// fillerTokens are verbs that the greedy city groups swallow in
// sentences like "lahore jana hai". They are never city names.
var fillerTokens = map[string]bool{
	"jana":    true,
	"jaana":   true,
	"hai":     true,
	"chahiye": true,
}

// titleLastToken keeps the final non-filler word of a possibly
// multi-word match and title-cases it, matching how city names are
// stored.
func titleLastToken(s string) string {
	parts := strings.Fields(s)
	for len(parts) > 1 && fillerTokens[parts[len(parts)-1]] {
		parts = parts[:len(parts)-1]
	}
	token := parts[len(parts)-1]
	return strings.ToUpper(token[:1]) + token[1:]
}
