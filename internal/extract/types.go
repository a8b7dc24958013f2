// Package extract provides rule-based field extraction from free-form
// chat input. Rules are deterministic pattern matchers applied in a fixed
// order; each rule returns candidate values without mutating anything, and
// the caller decides which candidates to keep.
package extract

// Field identifies one extractable conversation slot.
type Field string

const (
	FieldFromStation   Field = "from_station"
	FieldToStation     Field = "to_station"
	FieldTravelDate    Field = "travel_date"
	FieldBudget        Field = "budget"
	FieldPreferredTime Field = "preferred_time"
	FieldFormatPref    Field = "format_pref"
)

// Candidates is the result of one extraction pass: a partial field to
// value mapping. It is ephemeral and never persisted.
type Candidates map[Field]string

// Snapshot tells the rules which slots are already filled so that rules
// gated on unset fields can skip themselves.
type Snapshot struct {
	FromStation   string
	ToStation     string
	TravelDate    string
	Budget        string
	PreferredTime string
	FormatPref    string
}

// Time bucket values. Evening keywords collapse into TimeRaat; there is no
// fourth bucket.
const (
	TimeSubah   = "subah"
	TimeDopahar = "dopahar"
	TimeRaat    = "raat"
)

// Budget class values.
const (
	BudgetEconomy  = "Economy Class"
	BudgetBusiness = "Business Class"
	BudgetAC       = "AC Class"
)

// Output format values.
const (
	FormatList  = "list"
	FormatTable = "table"
	FormatJSON  = "json"
)
