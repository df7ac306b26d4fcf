package geo

import (
	"context"
	"errors"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Resolver turns a free-text address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (Coordinates, error)
}

var (
	// the provider answered but found nothing for the address
	ErrNoResults = errors.New("no results for address")
	// transport failure, provider outage or an undecodable answer
	ErrServiceUnavailable = errors.New("geocoding service unavailable")
)
