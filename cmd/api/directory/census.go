package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/clients"
)

const censusGeographiesPath = "/geocoder/geographies/onelineaddress"

// Layers 54, 56 and 58 are the congressional, upper and lower legislative districts
type censusQuery struct {
	Address   string `url:"address"`
	Benchmark string `url:"benchmark"`
	Vintage   string `url:"vintage"`
	Format    string `url:"format"`
	Layers    string `url:"layers"`
}

type censusResponse struct {
	Result struct {
		AddressMatches []censusMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusMatch struct {
	MatchedAddress    string `json:"matchedAddress"`
	AddressComponents struct {
		State string `json:"state"`
	} `json:"addressComponents"`
	Geographies map[string][]censusGeography `json:"geographies"`
}

type censusGeography struct {
	BaseName flexString `json:"BASENAME"`
	Name     flexString `json:"NAME"`
}

// layerTerms lists alternative term sets for one district layer, tried in order.
// A geography key matches a term set when it contains every term, ignoring case.
type layerTerms [][]string

var (
	federalLayer = layerTerms{{"Congress"}}
	upperLayer   = layerTerms{{"State", "Upper"}, {"State", "Senate"}}
	lowerLayer   = layerTerms{{"State", "Lower"}, {"State", "House"}}
)

// Census geocodes addresses to a state and district layers
type Census struct {
	http    *clients.HTTPClient
	baseURL string
	log     Logger
}

// NewCensus creates a new Census geocoder adapter
func NewCensus(baseURL string, httpClient *clients.HTTPClient, log Logger) *Census {
	return &Census{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Geocode resolves a free-text address using the first match returned.
// Returns ErrAddressNotFound when nothing matches and ErrStateUnknown when
// the match has no state. Missing district layers come back as nil fields.
func (c *Census) Geocode(ctx context.Context, address string) (*models.AddressMatch, error) {
	params, err := query.Values(censusQuery{
		Address:   address,
		Benchmark: "Public_AR_Current",
		Vintage:   "Current_Current",
		Format:    "json",
		Layers:    "54,56,58",
	})
	if err != nil {
		return nil, fmt.Errorf("encode geocoder query: %w", err)
	}

	endpoint := c.baseURL + censusGeographiesPath
	var resp censusResponse
	if err := c.http.GetJSON(ctx, endpoint+"?"+params.Encode(), endpoint, http.Header{}, &resp); err != nil {
		return nil, fmt.Errorf("geocode address: %w", err)
	}

	if len(resp.Result.AddressMatches) == 0 {
		return nil, ErrAddressNotFound
	}

	match := resp.Result.AddressMatches[0]
	state := strings.ToUpper(strings.TrimSpace(match.AddressComponents.State))
	if state == "" {
		return nil, ErrStateUnknown
	}

	geo := match.Geographies
	keys := sortedKeys(geo)

	result := &models.AddressMatch{
		MatchedAddress: match.MatchedAddress,
		State:          state,
		Districts: models.Districts{
			Federal:    extractDistrict(geo, keys, federalLayer),
			StateUpper: extractDistrict(geo, keys, upperLayer),
			StateLower: extractDistrict(geo, keys, lowerLayer),
		},
	}

	c.log.Debug("address geocoded",
		"state", state,
		"federal", models.Deref(result.Districts.Federal.District),
		"upper", models.Deref(result.Districts.StateUpper.District),
		"lower", models.Deref(result.Districts.StateLower.District),
	)

	return result, nil
}

// IsNotFound reports whether err means the address could not be placed
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAddressNotFound) || errors.Is(err, ErrStateUnknown)
}

func extractDistrict(geo map[string][]censusGeography, keys []string, layer layerTerms) models.DistrictRef {
	return models.DistrictRef{
		District: extractValue(geo, keys, layer, func(g censusGeography) string { return g.BaseName.String() }),
		Label:    extractValue(geo, keys, layer, func(g censusGeography) string { return g.Name.String() }),
	}
}

// extractValue returns the field of the first entry under the first key
// matching a term set, trying term sets in order.
func extractValue(geo map[string][]censusGeography, keys []string, layer layerTerms, field func(censusGeography) string) *string {
	for _, terms := range layer {
		key, ok := findLayerKey(keys, terms)
		if !ok || len(geo[key]) == 0 {
			continue
		}
		if v := strings.TrimSpace(field(geo[key][0])); v != "" {
			return &v
		}
	}
	return nil
}

func findLayerKey(keys []string, terms []string) (string, bool) {
	for _, key := range keys {
		lower := strings.ToLower(key)
		matched := true
		for _, term := range terms {
			if !strings.Contains(lower, strings.ToLower(term)) {
				matched = false
				break
			}
		}
		if matched {
			return key, true
		}
	}
	return "", false
}

// Geography keys are visited in sorted order so matching is deterministic
func sortedKeys(geo map[string][]censusGeography) []string {
	keys := make([]string, 0, len(geo))
	for k := range geo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
