package dialogue

import (
	"fmt"
	"regexp"

	"github.com/safarlabs/railsathi/internal/format"
)

// Reply strings are Roman Urdu with English transit vocabulary, the
// register the assistant speaks in. Keep them in one place so wording
// changes never touch control flow.

const (
	msgGreeting = "Assalam-o-Alaikum. Main aapki booking mein madad karunga. Pehle departure shehar batayein (misal: Karachi, Lahore, Islamabad)."

	msgEmptyInput = "Meharbani karke apna matlooba sawal ya maloomat likhein. 'reset' se naya start ho jaye ga."

	msgHelp = "Rehnumai: Bas seedhe alfaaz mein batayein. 'reset' se naya start. Ab current sawal ka jawab dein."

	msgNudgeFrom   = "Bara-e-meharbani departure shehar batayein (misal: Karachi, Lahore)."
	msgNudgeTo     = "Destination shehar batayein (e.g., Lahore, Quetta)."
	msgNudgeDate   = "Date batayein: aaj/kal/parso ya specific (YYYY-MM-DD)."
	msgNudgeBudget = "Budget ya class preference batayein (Economy/Business/AC ya Rs. amount)."
	msgNudgeTime   = "Time preference batayein: subah / dopahar / raat."

	msgPastDate = "Bara-e-meharbani mustaqbil ki date batayein (aaj/kal/parso ya YYYY-MM-DD)."

	msgConfirmNudge = "Meharbani karke tasdeeq karein: 'haan' likhein to main ab search shuru karun, warna 'nahi'."

	msgResultsNudge = "Naya search karna ho to 'reset' likhein."

	msgTurnFailure = "Kuch masla aa gaya. 'reset' karke dobara koshish karein."

	msgSearchFailure = "Search ke dauran technical masla aa gaya. Bara-e-meharbani thori dair baad dobara koshish karein."
)

var (
	// Substring triggers anywhere in the lowercased input.
	resetKeywords = []string{"reset", "restart", "fresh", "naya", "dobara"}
	helpKeywords  = []string{"help", "madad", "kaise"}

	affirmativePattern = regexp.MustCompile(`\b(haan|han|yes|ok|okay|ji|jee|search|proceed|start|kar)\b`)
	negativePattern    = regexp.MustCompile(`\b(nahi|no|nahin|na)\b`)
)

func msgAskTo(from string) string {
	return fmt.Sprintf("Departure: %s. Ab meharbani kar ke destination shehar batayein.", from)
}

func msgDestNoted(to string) string {
	return fmt.Sprintf("Destination note ho gaya: %s. Ab departure shehar batayein (misal: Islamabad).", to)
}

func msgAskDate(from, to string) string {
	return fmt.Sprintf("Route set: %s → %s. Ab travel date batayein (aaj/kal/parso ya YYYY-MM-DD).", from, to)
}

func msgAskBudget(date string) string {
	return fmt.Sprintf("Date confirm: %s. Ab budget ya class preference batayein (Economy/Business/AC ya Rs. amount).", format.HumanDate(date))
}

func msgAskTime(budget string) string {
	return fmt.Sprintf("Budget confirm: %s. Ab time preference batayein: subah, dopahar ya raat?", budget)
}

func msgSameCity(city string) string {
	return fmt.Sprintf("Departure aur destination ek hi shehar (%s) nahi ho sakte. Bara-e-meharbani mukhtalif destination batayein.", city)
}

func msgConfirmSummary(s State) string {
	return fmt.Sprintf("Summary:\n• Route: %s → %s\n• Date: %s\n• Time: %s\n• Budget: %s\n\nKya main ab search shuru karun? (haan/nahi)",
		s.FromStation, s.ToStation, format.HumanDate(s.TravelDate), s.PreferredTime, s.Budget)
}

func msgNegativeRestart() string {
	return "Theek hai. Dobara shuru karte hain.\n" + msgGreeting
}
