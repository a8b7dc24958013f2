// Package dialogue implements the slot-filling conversation controller
// for train searches. One Controller owns one conversation: it collects
// departure, destination, travel date, budget, and time preference from
// free-form input across turns, confirms, and then runs the fare lookup.
//
// Extraction is layered: deterministic rules first, a capped LLM call
// second. An LLM failure permanently degrades the session to rules-only.
package dialogue

// Stage is the controller's position in the linear dialogue machine.
type Stage string

const (
	StageInit         Stage = "init"
	StageFromCity     Stage = "from_city"
	StageToCity       Stage = "to_city"
	StageDate         Stage = "date"
	StageBudget       Stage = "budget"
	StageTime         Stage = "time"
	StageConfirm      Stage = "confirm"
	StageResultsShown Stage = "results_shown"
)

// State is the slot set for one conversation. Empty string means unset.
type State struct {
	Stage         Stage  `json:"stage"`
	FromStation   string `json:"from_station,omitempty"`
	ToStation     string `json:"to_station,omitempty"`
	TravelDate    string `json:"travel_date,omitempty"` // stored form YYYY-MM-DD, never a past date
	Budget        string `json:"budget,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	FormatPref    string `json:"format_pref,omitempty"`
}

// hasAllRequired reports whether the five search slots are filled.
// FormatPref is optional and defaults at render time.
func (s State) hasAllRequired() bool {
	return s.FromStation != "" &&
		s.ToStation != "" &&
		s.TravelDate != "" &&
		s.Budget != "" &&
		s.PreferredTime != ""
}
