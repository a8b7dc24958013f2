package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/extract"
	"github.com/safarlabs/railsathi/internal/fares"
	"github.com/safarlabs/railsathi/internal/format"
)

// FieldExtractor is the LLM fallback contract. A nil extractor means
// the controller runs rules-only for its whole lifetime.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, input string, today time.Time) (extract.Candidates, error)
}

// DefaultMaxLLMCalls caps fallback calls per conversation. The cap
// counts attempts, not successes.
const DefaultMaxLLMCalls = 2

// Controller runs one conversation. It is not safe for concurrent use;
// callers that share a Controller across goroutines must serialize
// turns themselves (session.Store does).
type Controller struct {
	rules    *extract.Engine
	llm      FieldExtractor
	provider fares.Provider
	logger   *zap.Logger
	now      func() time.Time

	maxLLMCalls int

	state    State
	degraded bool
	llmCalls int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the controller's time source. Tests use this to
// pin relative-date resolution.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxLLMCalls changes the per-conversation fallback cap.
func WithMaxLLMCalls(n int) Option {
	return func(c *Controller) { c.maxLLMCalls = n }
}

// NewController wires the extraction layers and the fare provider into
// a fresh conversation at StageInit. llm may be nil.
func NewController(rules *extract.Engine, llm FieldExtractor, provider fares.Provider, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if provider == nil {
		return nil, errors.New("fare provider is required")
	}
	if rules == nil {
		rules = extract.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		rules:       rules,
		llm:         llm,
		provider:    provider,
		logger:      logger,
		now:         time.Now,
		maxLLMCalls: DefaultMaxLLMCalls,
		state:       State{Stage: StageInit},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns a copy of the current slot set.
func (c *Controller) State() State { return c.state }

// Stage returns the current dialogue stage.
func (c *Controller) Stage() Stage { return c.state.Stage }

// Degraded reports whether the LLM fallback has been switched off for
// the remainder of this conversation.
func (c *Controller) Degraded() bool { return c.degraded }

// LLMCalls returns the number of fallback attempts made so far.
func (c *Controller) LLMCalls() int { return c.llmCalls }

// Reset clears every slot, returns to StageInit, re-arms the LLM
// fallback, and zeroes the call counter.
func (c *Controller) Reset() {
	c.state = State{Stage: StageInit}
	c.degraded = false
	c.llmCalls = 0
}

// ProcessTurn consumes one user utterance and returns the assistant
// reply. A panic anywhere in the turn is converted into a generic
// apology; state from before the panic is kept so the user can recover
// with "reset".
func (c *Controller) ProcessTurn(ctx context.Context, input string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("turn processing panicked",
				zap.Any("panic", r),
				zap.String("stage", string(c.state.Stage)))
			reply = msgTurnFailure
		}
	}()
	return c.processTurn(ctx, input)
}

func (c *Controller) processTurn(ctx context.Context, input string) string {
	text := strings.TrimSpace(input)
	if text == "" {
		return msgEmptyInput
	}
	lower := strings.ToLower(text)

	// Reserved keywords win over everything, including extraction:
	// "naya safar" restarts rather than filling a slot.
	if containsAny(lower, resetKeywords) {
		c.Reset()
		c.state.Stage = StageFromCity
		return msgGreeting
	}
	if containsAny(lower, helpKeywords) {
		return msgHelp
	}

	c.softResetIfNewRoute(lower)

	newInfo, extracted := c.ingest(ctx, text)

	switch c.state.Stage {
	case StageInit:
		return c.stepInit()
	case StageFromCity:
		return c.stepFromCity()
	case StageToCity:
		return c.stepToCity(text, extracted)
	case StageDate:
		return c.stepDate()
	case StageBudget:
		return c.stepBudget()
	case StageTime:
		return c.stepTime()
	case StageConfirm:
		return c.stepConfirm(ctx, lower, newInfo)
	case StageResultsShown:
		if strings.Contains(lower, "reset") {
			c.Reset()
			c.state.Stage = StageFromCity
			return msgGreeting
		}
		return msgResultsNudge
	default:
		c.logger.Warn("unknown stage, restarting", zap.String("stage", string(c.state.Stage)))
		c.state.Stage = StageFromCity
		return msgGreeting
	}
}

// softResetIfNewRoute clears the route slots when early-stage input
// looks like a route statement that mentions neither stored city. Only
// the format preference survives. Applies in init and from_city; later
// stages treat city names as answers to the current question.
func (c *Controller) softResetIfNewRoute(lower string) {
	if c.state.Stage != StageInit && c.state.Stage != StageFromCity {
		return
	}
	padded := " " + lower + " "
	routey := strings.Contains(padded, " se ") ||
		strings.Contains(lower, " jana") ||
		strings.Contains(padded, " to ")
	if !routey {
		return
	}
	oldFrom := strings.ToLower(c.state.FromStation)
	oldTo := strings.ToLower(c.state.ToStation)
	if oldFrom == "" && oldTo == "" {
		return
	}
	if (oldFrom != "" && strings.Contains(lower, oldFrom)) ||
		(oldTo != "" && strings.Contains(lower, oldTo)) {
		return
	}
	c.logger.Debug("soft reset on new route statement")
	c.state = State{Stage: c.state.Stage, FormatPref: c.state.FormatPref}
}

// ingest runs rule extraction and, when the rules produced nothing new,
// the capped LLM fallback. newInfo reports whether a required slot was
// filled this turn; a format preference alone does not count. extracted
// reports whether any candidate at all came out of the turn, format
// preference included.
func (c *Controller) ingest(ctx context.Context, text string) (newInfo, extracted bool) {
	have := extract.Snapshot{
		FromStation:   c.state.FromStation,
		ToStation:     c.state.ToStation,
		TravelDate:    c.state.TravelDate,
		Budget:        c.state.Budget,
		PreferredTime: c.state.PreferredTime,
		FormatPref:    c.state.FormatPref,
	}
	cands := c.rules.Extract(text, have)
	extracted = len(cands) > 0
	newInfo = c.merge(cands)
	if newInfo || c.degraded || c.llm == nil || c.llmCalls >= c.maxLLMCalls {
		return newInfo, extracted
	}

	c.llmCalls++
	cands, err := c.llm.ExtractFields(ctx, text, c.now())
	if err != nil {
		// One failure disables the fallback until the next full reset.
		c.degraded = true
		c.logger.Warn("llm extraction failed, rules-only from here",
			zap.Error(err),
			zap.Int("calls", c.llmCalls))
		return newInfo, extracted
	}
	if len(cands) > 0 {
		extracted = true
	}
	if c.merge(cands) {
		newInfo = true
	}
	return newInfo, extracted
}

// merge fills unset slots from candidates. Filled slots never change
// outside a reset. A past travel date is never stored; the rules engine
// already discards past absolute dates, and this guard covers the LLM
// path, which does not share that validation.
func (c *Controller) merge(cands extract.Candidates) bool {
	if len(cands) == 0 {
		return false
	}
	newInfo := false
	if v, ok := cands[extract.FieldFromStation]; ok && v != "" && c.state.FromStation == "" {
		c.state.FromStation = v
		newInfo = true
	}
	if v, ok := cands[extract.FieldToStation]; ok && v != "" && c.state.ToStation == "" {
		c.state.ToStation = v
		newInfo = true
	}
	if v, ok := cands[extract.FieldTravelDate]; ok && v != "" && c.state.TravelDate == "" {
		if !extract.IsPast(v, c.now()) {
			c.state.TravelDate = v
			newInfo = true
		}
	}
	if v, ok := cands[extract.FieldBudget]; ok && v != "" && c.state.Budget == "" {
		c.state.Budget = v
		newInfo = true
	}
	if v, ok := cands[extract.FieldPreferredTime]; ok && v != "" && c.state.PreferredTime == "" {
		c.state.PreferredTime = v
		newInfo = true
	}
	if v, ok := cands[extract.FieldFormatPref]; ok && v != "" && c.state.FormatPref == "" {
		c.state.FormatPref = v
	}
	return newInfo
}

func (c *Controller) stepInit() string {
	s := c.state
	switch {
	case s.FromStation != "" && s.ToStation != "":
		if strings.EqualFold(s.FromStation, s.ToStation) {
			c.state.ToStation = ""
			c.state.Stage = StageToCity
			return msgSameCity(s.FromStation)
		}
		c.state.Stage = StageDate
		return msgAskDate(s.FromStation, s.ToStation)
	case s.FromStation != "":
		c.state.Stage = StageToCity
		return msgAskTo(s.FromStation)
	case s.ToStation != "":
		c.state.Stage = StageFromCity
		return msgDestNoted(s.ToStation)
	default:
		c.state.Stage = StageFromCity
		return msgGreeting
	}
}

func (c *Controller) stepFromCity() string {
	s := c.state
	if s.FromStation == "" {
		return msgNudgeFrom
	}
	if s.ToStation != "" {
		if strings.EqualFold(s.FromStation, s.ToStation) {
			c.state.ToStation = ""
			return msgSameCity(s.FromStation)
		}
		c.state.Stage = StageDate
		return msgAskDate(s.FromStation, s.ToStation)
	}
	c.state.Stage = StageToCity
	return msgAskTo(s.FromStation)
}

func (c *Controller) stepToCity(text string, extracted bool) string {
	if c.state.ToStation == "" && !extracted {
		// A lone city name answers the open destination question; the
		// extraction rules reserve bare tokens for the departure slot.
		// Any extracted candidate, a format keyword included, means the
		// input was not a city name.
		if tok, ok := extract.BareToken(text); ok {
			c.state.ToStation = tok
		}
	}
	if c.state.ToStation != "" && strings.EqualFold(c.state.FromStation, c.state.ToStation) {
		c.state.ToStation = ""
		return msgSameCity(c.state.FromStation)
	}
	if c.state.ToStation == "" {
		return msgNudgeTo
	}
	c.state.Stage = StageDate
	return msgAskDate(c.state.FromStation, c.state.ToStation)
}

func (c *Controller) stepDate() string {
	if c.state.TravelDate == "" {
		return msgNudgeDate
	}
	if extract.IsPast(c.state.TravelDate, c.now()) {
		c.state.TravelDate = ""
		return msgPastDate
	}
	c.state.Stage = StageBudget
	return msgAskBudget(c.state.TravelDate)
}

func (c *Controller) stepBudget() string {
	if c.state.Budget == "" {
		return msgNudgeBudget
	}
	c.state.Stage = StageTime
	return msgAskTime(c.state.Budget)
}

func (c *Controller) stepTime() string {
	if c.state.PreferredTime == "" {
		return msgNudgeTime
	}
	c.state.Stage = StageConfirm
	return msgConfirmSummary(c.state)
}

func (c *Controller) stepConfirm(ctx context.Context, lower string, newInfo bool) string {
	if affirmativePattern.MatchString(lower) {
		return c.searchAndFormat(ctx)
	}
	if negativePattern.MatchString(lower) {
		c.state = State{Stage: StageFromCity, FormatPref: c.state.FormatPref}
		return msgNegativeRestart()
	}
	if newInfo && c.state.hasAllRequired() {
		return msgConfirmSummary(c.state)
	}
	return msgConfirmNudge
}

// searchAndFormat runs the confirmed query. The stage advances to
// results_shown only after the provider call succeeds, so a transient
// lookup failure leaves the user at confirm and "haan" retries.
func (c *Controller) searchAndFormat(ctx context.Context) string {
	s := c.state
	records, err := c.provider.Search(ctx, fares.Query{
		FromStation:   s.FromStation,
		ToStation:     s.ToStation,
		TravelDate:    s.TravelDate,
		PreferredTime: s.PreferredTime,
		Budget:        s.Budget,
	})
	if err != nil {
		c.logger.Error("fare lookup failed",
			zap.Error(err),
			zap.String("from", s.FromStation),
			zap.String("to", s.ToStation))
		return msgSearchFailure
	}
	c.state.Stage = StageResultsShown

	crit := format.Criteria{
		FromStation:   s.FromStation,
		ToStation:     s.ToStation,
		TravelDate:    s.TravelDate,
		PreferredTime: s.PreferredTime,
		Budget:        s.Budget,
	}
	if len(records) == 0 {
		return format.NoResults(crit)
	}
	out, err := format.Render(s.FormatPref, records, crit)
	if err != nil {
		c.logger.Error("result formatting failed", zap.Error(err))
		return msgSearchFailure
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
