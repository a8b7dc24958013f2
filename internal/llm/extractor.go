// Package llm provides single-shot structured field extraction over an
// OpenAI-compatible chat endpoint. It is the fallback layer behind the
// rule-based extractor: one prompt, one JSON object back, no conversation
// history. Callers enforce the per-session call cap and flip into degraded
// mode when a call fails.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/safarlabs/railsathi/internal/extract"
)

// Defaults mirror the rate-limit and client settings used against
// OpenRouter's free tier.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.3-70b-instruct:free"
	DefaultTimeout = 18 * time.Second

	defaultRateLimit   = 50.0 / 60.0 // requests per second
	defaultBurst       = 5
	defaultTemperature = 0.3
)

// ErrNoAPIKey indicates the extractor was not configured with a key; the
// conversation runs rule-based only.
var ErrNoAPIKey = errors.New("llm: no API key configured")

// ErrNoJSON indicates the model reply contained no parseable JSON object.
var ErrNoJSON = errors.New("llm: response contained no JSON object")

// Config holds client settings for the extractor.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Extractor performs structured field extraction calls.
type Extractor struct {
	model   llms.Model
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an Extractor. Returns ErrNoAPIKey when no key is set so the
// caller can start the conversation in degraded mode instead of failing.
func New(cfg Config, logger *zap.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}

	return &Extractor{
		model:   client,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// promptTemplate instructs the model to emit exactly the six-key JSON
// object. %s slots: today's date, then the user message.
const promptTemplate = `You are a Pakistani railway booking assistant. Extract booking
details from the user's free-form message.

Normalization rules:
- travel_date: YYYY-MM-DD (aaj=%s, kal=+1 day, parso=+2 days; never a past date)
- preferred_time: "subah"|"dopahar"|"raat" (sham/shaam/evening/night -> raat)
- budget: "Economy Class"|"Business Class"|"AC Class"|"Rs. <amount>"
- format_pref: "list"|"table"|"json" (optional)

Output ONLY a JSON object with exactly these keys, null for anything
the message does not state:
{
  "from_station": null|"City",
  "to_station": null|"City",
  "travel_date": null|"YYYY-MM-DD",
  "budget": null|"Economy Class|Business Class|AC Class|Rs. 3000",
  "preferred_time": null|"subah|dopahar|raat",
  "format_pref": null|"list|table|json"
}

User message:
%s

Output ONLY the JSON object.`

// fieldsPayload is the wire shape of the model reply. Every key is
// optional; nulls and absent keys are equivalent.
type fieldsPayload struct {
	FromStation   *string `json:"from_station"`
	ToStation     *string `json:"to_station"`
	TravelDate    *string `json:"travel_date"`
	Budget        *string `json:"budget"`
	PreferredTime *string `json:"preferred_time"`
	FormatPref    *string `json:"format_pref"`
}

// ExtractFields sends one extraction prompt and returns the parsed
// candidates. Any transport or parse failure is returned as an error; the
// caller treats every error as a signal to degrade permanently for the
// session.
func (e *Extractor) ExtractFields(ctx context.Context, input string, today time.Time) (extract.Candidates, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, today.Format(extract.DateLayout), input)

	start := time.Now()
	reply, err := llms.GenerateFromSinglePrompt(ctx, e.model, prompt,
		llms.WithTemperature(defaultTemperature))
	observeCall(err)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	e.logger.Debug("llm extraction call",
		zap.Duration("duration", time.Since(start)),
		zap.Int("reply_len", len(reply)))

	return parseFields(reply)
}

var (
	jsonLabelPattern = regexp.MustCompile(`(?i)^\s*json\s*`)
	openFencePattern = regexp.MustCompile("(?i)^\\s*```(?:json)?\\s*")
	endFencePattern  = regexp.MustCompile("\\s*```\\s*$")
	jsonSpanPattern  = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseFields recovers the JSON object from a model reply that may be
// wrapped in a language tag or markdown code fences, then maps it onto
// extraction candidates.
func parseFields(reply string) (extract.Candidates, error) {
	t := strings.TrimSpace(reply)
	t = jsonLabelPattern.ReplaceAllString(t, "")
	t = openFencePattern.ReplaceAllString(t, "")
	t = endFencePattern.ReplaceAllString(t, "")

	span := jsonSpanPattern.FindString(t)
	if span == "" {
		return nil, ErrNoJSON
	}

	var payload fieldsPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}

	c := extract.Candidates{}
	put := func(f extract.Field, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			c[f] = strings.TrimSpace(*v)
		}
	}
	put(extract.FieldFromStation, payload.FromStation)
	put(extract.FieldToStation, payload.ToStation)
	put(extract.FieldTravelDate, payload.TravelDate)
	put(extract.FieldBudget, payload.Budget)
	put(extract.FieldPreferredTime, payload.PreferredTime)
	put(extract.FieldFormatPref, payload.FormatPref)
	return c, nil
}
