package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safarlabs/railsathi/internal/fares"
)

var testCriteria = Criteria{
	FromStation:   "Karachi",
	ToStation:     "Lahore",
	TravelDate:    "2026-09-01",
	PreferredTime: "raat",
	Budget:        "Economy Class",
}

func testRecords() []fares.TrainRecord {
	return []fares.TrainRecord{
		{
			ID:             "train_1",
			Name:           "Evening Express",
			Route:          "Karachi → Lahore",
			TravelDate:     "2026-09-01",
			DepartureTime:  "18:45",
			ArrivalTime:    "00:15",
			Duration:       "5h 30m",
			EconomyFare:    "Rs. 1,200",
			BusinessFare:   "Rs. 2,000",
			ACFare:         "Rs. 3,400",
			Stops:          "3 stops",
			AvailableSeats: 20,
			TrainType:      "Express",
			Status:         "Available",
		},
		{
			ID:            "train_2",
			Name:          "Night Coach Express With A Very Long Name",
			DepartureTime: "22:30",
			ArrivalTime:   "04:00",
			Duration:      "5h 30m",
			EconomyFare:   "Rs. 1,080",
			BusinessFare:  "Rs. 1,750",
			ACFare:        "Rs. 2,900",
			Stops:         "6 stops",
		},
	}
}

func TestHumanDate(t *testing.T) {
	assert.Equal(t, "01 September 2026 (Tuesday)", HumanDate("2026-09-01"))
	assert.Equal(t, "not-a-date", HumanDate("not-a-date"), "falls back to raw string")
}

func TestRender_List(t *testing.T) {
	out, err := Render("", testRecords(), testCriteria)
	require.NoError(t, err)

	assert.Contains(t, out, "Route: Karachi → Lahore")
	assert.Contains(t, out, "1. Evening Express")
	assert.Contains(t, out, "Waqt: 18:45 → 00:15 (5h 30m)")
	assert.Contains(t, out, "Fares: Economy Rs. 1,200 | Business Rs. 2,000 | AC Rs. 3,400")
	assert.Contains(t, out, "01 September 2026 (Tuesday)")
	assert.Contains(t, out, "'reset'")

	// Provider order is preserved; the formatter never sorts.
	assert.Less(t, strings.Index(out, "Evening Express"), strings.Index(out, "Night Coach"))
}

func TestRender_Table(t *testing.T) {
	out, err := Render("table", testRecords(), testCriteria)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "Karachi → Lahore | 01 September 2026 (Tuesday) | raat | Economy Class", lines[0])
	assert.Equal(t, strings.Repeat("-", 110), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "No  Train"))

	// Long names are truncated to the column width.
	assert.Contains(t, out, "Night Coach Express Wi ")
	assert.NotContains(t, out, "Very Long Name")
}

func TestRender_JSON(t *testing.T) {
	out, err := Render("json", testRecords(), testCriteria)
	require.NoError(t, err)

	var decoded struct {
		Results []fares.TrainRecord `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "Evening Express", decoded.Results[0].Name)
	assert.Equal(t, "Karachi → Lahore", decoded.Results[0].Route)

	// Non-ASCII (the route arrow) must be escaped in the raw body.
	assert.NotContains(t, out, "→")
	assert.Contains(t, out, `\u2192`)
}

func TestRender_JSONEmpty(t *testing.T) {
	out, err := Render("json", nil, testCriteria)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.JSONEq(t, `[]`, string(decoded["results"]))
}

func TestNoResults(t *testing.T) {
	out := NoResults(testCriteria)
	assert.Contains(t, out, "Route: Karachi → Lahore")
	assert.Contains(t, out, "Time: raat")
	assert.Contains(t, out, "Budget: Economy Class")
	assert.Contains(t, out, "'reset'")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc  ", pad("abc", 5))
	assert.Equal(t, "abcde", pad("abcdefg", 5))
	assert.Equal(t, "   ", pad("", 3))
	assert.Equal(t, "شاہین", pad("شاہین ایکسپریس", 5), "truncation must not split a rune")
	assert.Equal(t, "سبز  ", pad("سبز", 5))
}
