package fares

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/extract"
)

func testQuery(bucket string) Query {
	return Query{
		FromStation:   "Karachi",
		ToStation:     "Lahore",
		TravelDate:    "2026-09-01",
		PreferredTime: bucket,
		Budget:        "Economy Class",
	}
}

func TestSampleProvider_Search(t *testing.T) {
	p := NewSampleProvider(1, zap.NewNop())
	ctx := context.Background()

	t.Run("filters by subah", func(t *testing.T) {
		records, err := p.Search(ctx, testQuery(extract.TimeSubah))
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Contains(t, []string{"Subh-e-Pakistan Express", "Morning Business Express"}, r.Name)
		}
	})

	t.Run("filters by raat", func(t *testing.T) {
		records, err := p.Search(ctx, testQuery(extract.TimeRaat))
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("unknown bucket returns first five", func(t *testing.T) {
		records, err := p.Search(ctx, testQuery("whenever"))
		require.NoError(t, err)
		assert.Len(t, records, 5)
	})

	t.Run("records carry query route and date", func(t *testing.T) {
		records, err := p.Search(ctx, testQuery(extract.TimeDopahar))
		require.NoError(t, err)
		require.NotEmpty(t, records)
		assert.Equal(t, "Karachi → Lahore", records[0].Route)
		assert.Equal(t, "2026-09-01", records[0].TravelDate)
		assert.Equal(t, "Available", records[0].Status)
		assert.GreaterOrEqual(t, records[0].AvailableSeats, 15)
		assert.LessOrEqual(t, records[0].AvailableSeats, 45)
		assert.Contains(t, trainTypes, records[0].TrainType)
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Search(cancelled, testQuery(extract.TimeRaat))
		assert.Error(t, err)
	})
}
