package geodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/platform/obs"

	"golang.org/x/time/rate"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// nominatimPlace mirrors the relevant parts of the search and reverse payloads.
type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

type NominatimOptions struct {
	BaseURL     string
	CountryCode string
	UserAgent   string
	Timeout     time.Duration
	// Limiter throttles outgoing requests; the public instance allows 1 req/s.
	Limiter *rate.Limiter
}

// NominatimGeocoder implements ports.Geocoder using the OpenStreetMap Nominatim API.
// Forward search is restricted to a single country and returns only the first match.
type NominatimGeocoder struct {
	*client
	baseURL     string
	countryCode string
}

func NewNominatimGeocoder(opts NominatimOptions) (*NominatimGeocoder, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultNominatimURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("nominatim base url %q: %w", base, err)
	}

	country := strings.ToLower(strings.TrimSpace(opts.CountryCode))
	if country == "" {
		return nil, errors.New("nominatim country code is empty")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &NominatimGeocoder{
		client:      newClient(timeout, opts.UserAgent, opts.Limiter),
		baseURL:     base,
		countryCode: country,
	}, nil
}

func (n *NominatimGeocoder) Search(ctx context.Context, query string) (_ domain.Location, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	endpoint := n.baseURL + "/search"
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("countrycodes", n.countryCode)
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	resp, err := n.doWithRetry(ctx, func() (*http.Request, error) {
		return n.newRequest(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	})
	if err != nil {
		return domain.Location{}, &domain.GeocodeError{Query: query, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	var decoded []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Location{}, &domain.GeocodeError{Query: query, Err: fmt.Errorf("decode search response: %w", err)}
	}

	if len(decoded) == 0 {
		return domain.Location{}, &domain.NotFoundError{What: "location", Query: query}
	}

	best := decoded[0]
	coords, err := parseLatLon(best.Lat, best.Lon)
	if err != nil {
		return domain.Location{}, &domain.GeocodeError{Query: query, Err: err}
	}

	return domain.Location{
		Coordinates: coords,
		Place:       best.place(),
	}, nil
}

func (n *NominatimGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (_ domain.Place, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	if !c.IsValid() {
		return domain.Place{}, domain.InvalidInput("reverse geocode: invalid coordinates")
	}

	endpoint := n.baseURL + "/reverse"
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Lng, 'f', -1, 64))

	resp, err := n.doWithRetry(ctx, func() (*http.Request, error) {
		return n.newRequest(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("reverse geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Place{}, fmt.Errorf("reverse geocode: decode response: %w", err)
	}
	if decoded.Error != "" {
		return domain.Place{}, fmt.Errorf("reverse geocode: upstream: %s", decoded.Error)
	}

	return decoded.place(), nil
}

func (p nominatimPlace) place() domain.Place {
	city := p.Address.City
	if city == "" {
		city = p.Address.Town
	}
	if city == "" {
		city = p.Address.Village
	}

	return domain.Place{
		Address: p.DisplayName,
		City:    city,
		State:   p.Address.State,
		Country: p.Address.Country,
	}
}

func parseLatLon(lat, lon string) (domain.Coordinates, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}

	c := domain.Coordinates{Lat: la, Lng: lo}
	if !c.IsValid() {
		return domain.Coordinates{}, fmt.Errorf("non-finite coordinate %q,%q", lat, lon)
	}
	return c, nil
}
