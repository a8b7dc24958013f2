// Package fares provides the fare-lookup collaborator for the dialogue
// controller. The live railway site cannot be queried reliably, so the
// default provider serves a synthetic catalog shaped like real lookup
// results, filtered by the requested time-of-day bucket.
package fares

import "context"

// TrainRecord is one fare result. The dialogue core treats it as an
// opaque read-only record; only the formatter inspects fields.
type TrainRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Route          string `json:"route"`
	TravelDate     string `json:"travel_date"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	Duration       string `json:"duration"`
	EconomyFare    string `json:"economy_fare"`
	BusinessFare   string `json:"business_fare"`
	ACFare         string `json:"ac_fare"`
	Stops          string `json:"stops"`
	AvailableSeats int    `json:"available_seats"`
	TrainType      string `json:"train_type"`
	Status         string `json:"status"`
}

// Query carries the five confirmed slots.
type Query struct {
	FromStation   string
	ToStation     string
	TravelDate    string
	PreferredTime string
	Budget        string
}

// Provider looks up fares for a confirmed query. Implementations may
// return an empty slice; they must not block indefinitely.
type Provider interface {
	Search(ctx context.Context, q Query) ([]TrainRecord, error)
}
