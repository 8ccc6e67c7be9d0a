package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rebecca-roussel/ecoride/pkg/logger"
	"googlemaps.github.io/maps"
)

const maxSuggestions = 5

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type geocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleGeocoder suggests places for the ride forms. Results are cached
// per normalized query.
type GoogleGeocoder struct {
	client geocodeClient
	region string
	cache  Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewGoogleGeocoder returns a geocoder on the Google Maps API. cache may be
// nil.
func NewGoogleGeocoder(apiKey, region string, cache Cache, ttl time.Duration, log *logger.Logger) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, region: region, cache: cache, ttl: ttl, log: log}, nil
}

func geocodeCacheKey(query string) string {
	return "geocode:" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (g *GoogleGeocoder) Suggest(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []Place{}, nil
	}

	key := geocodeCacheKey(query)
	if g.cache != nil {
		var cached []Place
		found, err := g.cache.Get(ctx, key, &cached)
		if err != nil {
			g.log.WithField("key", key).WithError(err).Warn("geocode cache read failed")
		} else if found {
			return cached, nil
		}
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  query,
		Region:   g.region,
		Language: "fr",
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	places := make([]Place, 0, maxSuggestions)
	for _, r := range results {
		if len(places) == maxSuggestions {
			break
		}
		places = append(places, Place{
			Label: r.FormattedAddress,
			City:  cityOf(r.AddressComponents),
			Lat:   r.Geometry.Location.Lat,
			Lng:   r.Geometry.Location.Lng,
		})
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, places, g.ttl); err != nil {
			g.log.WithField("key", key).WithError(err).Warn("geocode cache write failed")
		}
	}
	return places, nil
}

func cityOf(components []maps.AddressComponent) string {
	for _, c := range components {
		for _, t := range c.Types {
			if t == "locality" {
				return c.LongName
			}
		}
	}
	return ""
}
