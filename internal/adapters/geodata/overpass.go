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
)

const (
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"
	// server-side timeout hint in seconds
	overpassServerTimeout = 25
)

type overpassPoint struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassPoint    `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
	Remark   string            `json:"remark"`
}

// OverpassFeatureSource implements ports.FeatureSource against the Overpass API.
type OverpassFeatureSource struct {
	*client
	endpoint string
}

func NewOverpassFeatureSource(endpoint, userAgent string, timeout time.Duration) (*OverpassFeatureSource, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("overpass endpoint %q: %w", endpoint, err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OverpassFeatureSource{
		client:   newClient(timeout, userAgent, nil),
		endpoint: endpoint,
	}, nil
}

// policeQuery requests nodes, ways and relations tagged amenity=police in one query.
// "out center" makes the server attach a centroid to ways and relations.
func policeQuery(center domain.Coordinates, radiusMeters int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)",
		radiusMeters,
		strconv.FormatFloat(center.Lat, 'f', -1, 64),
		strconv.FormatFloat(center.Lng, 'f', -1, 64),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", overpassServerTimeout)
	for _, kind := range []domain.FeatureKind{domain.KindNode, domain.KindWay, domain.KindRelation} {
		fmt.Fprintf(&b, "  %s[\"amenity\"=\"police\"]%s;\n", kind, around)
	}
	b.WriteString(");\nout center meta;")
	return b.String()
}

func (o *OverpassFeatureSource) PoliceFeatures(
	ctx context.Context,
	center domain.Coordinates,
	radiusMeters int,
) (_ []domain.Feature, err error) {
	defer obs.Time(ctx, "overpass.PoliceFeatures")(&err)

	if !center.IsValid() {
		return nil, errors.New("overpass: invalid center coordinates")
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("overpass: radius must be positive, got %d", radiusMeters)
	}

	form := url.Values{}
	form.Set("data", policeQuery(center, radiusMeters))
	payload := form.Encode()

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, o.endpoint, strings.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	if decoded.Elements == nil {
		return nil, fmt.Errorf("overpass response has no elements (remark=%q)", decoded.Remark)
	}

	features := make([]domain.Feature, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		f, ok := el.toFeature()
		if !ok {
			continue
		}
		features = append(features, f)
	}

	return features, nil
}

// toFeature resolves geometry once so callers never inspect element types.
func (el overpassElement) toFeature() (domain.Feature, bool) {
	switch domain.FeatureKind(el.Type) {
	case domain.KindNode:
		if el.Lat == nil || el.Lon == nil {
			return nil, false
		}
		return domain.PointFeature{
			ID:       el.ID,
			Position: domain.Coordinates{Lat: *el.Lat, Lng: *el.Lon},
			TagSet:   el.Tags,
		}, true
	case domain.KindWay, domain.KindRelation:
		f := domain.AreaFeature{
			Structure: domain.FeatureKind(el.Type),
			ID:        el.ID,
			TagSet:    el.Tags,
		}
		if el.Center != nil && el.Center.Lat != nil && el.Center.Lon != nil {
			f.Center = &domain.Coordinates{Lat: *el.Center.Lat, Lng: *el.Center.Lon}
		}
		return f, true
	default:
		return nil, false
	}
}
