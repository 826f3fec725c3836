package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// GeoResult is a resolved place.
type GeoResult struct {
	Point   utils.Point `json:"point"`
	Address string      `json:"address"`
	City    string      `json:"city"`
	State   string      `json:"state"`
	ZipCode string      `json:"zipCode"`
	Country string      `json:"country"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeoResult, error)
}

// MapQuestGeocoder calls the MapQuest address endpoint.
type MapQuestGeocoder struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewMapQuestGeocoder(endpoint, apiKey string) *MapQuestGeocoder {
	return &MapQuestGeocoder{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"`
			AdminArea3 string `json:"adminArea3"`
			AdminArea1 string `json:"adminArea1"`
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (g *MapQuestGeocoder) Geocode(ctx context.Context, query string) (*GeoResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Please add a zipcode or address")
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("location", query)
	params.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("Geocoding failed", fmt.Errorf("geocoder returned %s", resp.Status))
	}

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, apperror.Upstream("Geocoding failed", fmt.Errorf("geocoder status %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; ")))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, apperror.NotFound("No location found for %q", query)
	}

	loc := body.Results[0].Locations[0]
	return &GeoResult{
		Point:   utils.Point{Lat: loc.LatLng.Lat, Lng: loc.LatLng.Lng},
		Address: loc.Street,
		City:    loc.AdminArea5,
		State:   loc.AdminArea3,
		ZipCode: loc.PostalCode,
		Country: loc.AdminArea1,
	}, nil
}

// CachedGeocoder keeps results in a local ccache and, when a Redis client is
// set, in Redis so other instances share lookups.
type CachedGeocoder struct {
	next  Geocoder
	local *ccache.Cache[*GeoResult]
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedGeocoder {
	return &CachedGeocoder{
		next:  next,
		local: ccache.New(ccache.Configure[*GeoResult]().MaxSize(1000)),
		redis: rdb,
		ttl:   ttl,
		log:   log,
	}
}

func geocodeKey(query string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(query))
}

func (g *CachedGeocoder) Geocode(ctx context.Context, query string) (*GeoResult, error) {
	key := geocodeKey(query)

	if item := g.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	if g.redis != nil {
		data, err := g.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var res GeoResult
			if err := json.Unmarshal(data, &res); err == nil {
				g.local.Set(key, &res, g.ttl)
				return &res, nil
			}
		case !errors.Is(err, redis.Nil):
			g.log.WithError(err).WithField("key", key).Warn("geocode cache read failed")
		}
	}

	res, err := g.next.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	g.local.Set(key, res, g.ttl)
	if g.redis != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := g.redis.Set(ctx, key, data, g.ttl).Err(); err != nil {
				g.log.WithError(err).WithField("key", key).Warn("geocode cache write failed")
			}
		}
	}
	return res, nil
}
