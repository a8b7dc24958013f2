package fares

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/extract"
)

// catalogEntry is one template train with its time-of-day category.
type catalogEntry struct {
	name          string
	departureTime string
	arrivalTime   string
	economyFare   string
	businessFare  string
	acFare        string
	stops         string
	duration      string
	timeCategory  string
}

// catalog lists every template train. Entries are grouped morning to
// night so the unfiltered default (first five) spans the day.
var catalog = []catalogEntry{
	{"Subh-e-Pakistan Express", "06:00", "11:30", "Rs. 950", "Rs. 1,600", "Rs. 2,800", "4 stops", "5h 30m", extract.TimeSubah},
	{"Morning Business Express", "08:15", "13:45", "Rs. 1,100", "Rs. 1,850", "Rs. 3,200", "3 stops", "5h 30m", extract.TimeSubah},
	{"Daytime Express", "12:30", "18:00", "Rs. 980", "Rs. 1,650", "Rs. 2,900", "5 stops", "5h 30m", extract.TimeDopahar},
	{"Afternoon Special", "15:20", "20:50", "Rs. 1,050", "Rs. 1,750", "Rs. 3,100", "4 stops", "5h 30m", extract.TimeDopahar},
	{"Evening Express", "18:45", "00:15", "Rs. 1,200", "Rs. 2,000", "Rs. 3,400", "3 stops", "5h 30m", extract.TimeRaat},
	{"Night Coach Express", "22:30", "04:00", "Rs. 1,080", "Rs. 1,750", "Rs. 2,900", "6 stops", "5h 30m", extract.TimeRaat},
	{"Late Night Special", "23:45", "05:15", "Rs. 1,000", "Rs. 1,650", "Rs. 2,800", "4 stops", "5h 30m", extract.TimeRaat},
}

var trainTypes = []string{"Express", "Mail", "Passenger"}

// SampleProvider serves the synthetic catalog.
type SampleProvider struct {
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampleProvider creates a provider. The seed fixes seat counts and
// train types for reproducible tests; pass 0 for a time-based seed.
func NewSampleProvider(seed int64, logger *zap.Logger) *SampleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(rand.Int63())
	}
	return &SampleProvider{
		logger: logger,
		rng:    rand.New(src),
	}
}

// Search returns catalog trains matching the requested time bucket. An
// empty or unrecognized bucket yields the first five catalog entries.
func (p *SampleProvider) Search(ctx context.Context, q Query) ([]TrainRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var filtered []catalogEntry
	switch q.PreferredTime {
	case extract.TimeSubah, extract.TimeDopahar, extract.TimeRaat:
		for _, e := range catalog {
			if e.timeCategory == q.PreferredTime {
				filtered = append(filtered, e)
			}
		}
	default:
		filtered = catalog[:5]
	}

	records := make([]TrainRecord, 0, len(filtered))
	for i, e := range filtered {
		records = append(records, TrainRecord{
			ID:             fmt.Sprintf("train_%d", i+1),
			Name:           e.name,
			Route:          fmt.Sprintf("%s → %s", q.FromStation, q.ToStation),
			TravelDate:     q.TravelDate,
			DepartureTime:  e.departureTime,
			ArrivalTime:    e.arrivalTime,
			Duration:       e.duration,
			EconomyFare:    e.economyFare,
			BusinessFare:   e.businessFare,
			ACFare:         e.acFare,
			Stops:          e.stops,
			AvailableSeats: p.seats(),
			TrainType:      p.trainType(),
			Status:         "Available",
		})
	}

	p.logger.Debug("sample fare lookup",
		zap.String("route", q.FromStation+" → "+q.ToStation),
		zap.String("time", q.PreferredTime),
		zap.Int("results", len(records)))

	return records, nil
}

func (p *SampleProvider) seats() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return 15 + p.rng.Intn(31)
}

func (p *SampleProvider) trainType() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return trainTypes[p.rng.Intn(len(trainTypes))]
}

var _ Provider = (*SampleProvider)(nil)
