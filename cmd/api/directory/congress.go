package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/cache"
	"github.com/promptmyrep/civic/common/clients"
	"golang.org/x/sync/errgroup"
)

const congressMembersCachePrefix = "congress:members:"

type congressListQuery struct {
	APIKey        string `url:"api_key"`
	CurrentMember bool   `url:"currentMember"`
	Limit         int    `url:"limit"`
	Format        string `url:"format"`
}

type congressDetailQuery struct {
	APIKey string `url:"api_key"`
	Format string `url:"format"`
}

type congressMember struct {
	BioguideID string     `json:"bioguideId"`
	Name       string     `json:"name"`
	PartyName  string     `json:"partyName"`
	State      string     `json:"state"`
	District   flexString `json:"district"`
	Chamber    string     `json:"chamber"`
	URL        string     `json:"url"`
	Depiction  *struct {
		ImageURL string `json:"imageUrl"`
	} `json:"depiction"`
	Terms termList `json:"terms"`
}

type congressTerm struct {
	Chamber  string     `json:"chamber"`
	District flexString `json:"district"`
	Phone    string     `json:"phone"`
	URL      string     `json:"url"`
}

type congressDetail struct {
	AddressInformation *struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"addressInformation"`
	Terms termList `json:"terms"`
}

// termList accepts a bare list of terms, an {"item": [...]} wrapper, or an
// {"item": {...}} wrapper around a single term.
type termList []congressTerm

func (t *termList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	switch data[0] {
	case '[':
		var items []congressTerm
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*t = items
		return nil
	case '{':
		var wrapper struct {
			Item json.RawMessage `json:"item"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return err
		}
		item := bytes.TrimSpace(wrapper.Item)
		if len(item) == 0 || bytes.Equal(item, []byte("null")) {
			*t = nil
			return nil
		}
		if item[0] == '[' {
			var items []congressTerm
			if err := json.Unmarshal(item, &items); err != nil {
				return err
			}
			*t = items
			return nil
		}
		var single congressTerm
		if err := json.Unmarshal(item, &single); err != nil {
			return err
		}
		*t = termList{single}
		return nil
	default:
		return fmt.Errorf("unexpected terms shape: %.20s", data)
	}
}

// latest returns the most recent term; terms are listed oldest first
func (t termList) latest() (congressTerm, bool) {
	if len(t) == 0 {
		return congressTerm{}, false
	}
	return t[len(t)-1], true
}

// Congress looks up sitting members of Congress
type Congress struct {
	http     *clients.HTTPClient
	baseURL  string
	apiKey   string
	cache    cache.Cache
	cacheTTL time.Duration
	log      Logger
}

// NewCongress creates a new Congress.gov adapter. An empty apiKey leaves it disabled.
// Member lists are cached per state when c is non-nil.
func NewCongress(baseURL, apiKey string, httpClient *clients.HTTPClient, c cache.Cache, cacheTTL time.Duration, log Logger) *Congress {
	return &Congress{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Enabled reports whether the adapter has credentials
func (c *Congress) Enabled() bool {
	return c.apiKey != ""
}

// HouseRep returns the House member for a state and district, or nil when
// no current member matches or district is empty.
func (c *Congress) HouseRep(ctx context.Context, state, district string) (*models.Representative, error) {
	if !c.Enabled() {
		return nil, ErrAdapterDisabled
	}
	if district == "" {
		return nil, nil
	}

	members, err := c.members(ctx, state)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if !holdsHouseSeat(m, district) {
			continue
		}
		detail := c.detail(ctx, m.BioguideID)
		return normalizeCongressMember(m, detail, models.RoleRepresentative, state, district), nil
	}

	c.log.Warn("no house member matched", "state", state, "district", district, "members", len(members))
	return nil, nil
}

// Senators returns every current senator of a state in upstream order.
// Detail records are fetched concurrently.
func (c *Congress) Senators(ctx context.Context, state string) ([]*models.Representative, error) {
	if !c.Enabled() {
		return nil, ErrAdapterDisabled
	}

	members, err := c.members(ctx, state)
	if err != nil {
		return nil, err
	}

	var senators []congressMember
	for _, m := range members {
		if isSenator(m) {
			senators = append(senators, m)
		}
	}

	reps := make([]*models.Representative, len(senators))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range senators {
		g.Go(func() error {
			detail := c.detail(gctx, m.BioguideID)
			reps[i] = normalizeCongressMember(m, detail, models.RoleSenator, state, models.StatewideDistrict)
			return nil
		})
	}
	_ = g.Wait()

	return reps, nil
}

func holdsHouseSeat(m congressMember, district string) bool {
	if m.District != "" && m.District.String() == district {
		return true
	}
	latest, ok := m.Terms.latest()
	return ok && isHouseChamber(latest.Chamber) && latest.District.String() == district
}

func isSenator(m congressMember) bool {
	if latest, ok := m.Terms.latest(); ok {
		return latest.Chamber == "Senate"
	}
	return m.Chamber == "Senate"
}

func isHouseChamber(chamber string) bool {
	return chamber == "House of Representatives" || chamber == "House"
}

// members lists current members for a state, served from cache when possible
func (c *Congress) members(ctx context.Context, state string) ([]congressMember, error) {
	key := congressMembersCachePrefix + state

	var members []congressMember
	if cache.GetJSON(ctx, c.cache, key, &members) {
		c.log.Debug("congress members cache hit", "state", state, "count", len(members))
		return members, nil
	}

	params, err := query.Values(congressListQuery{
		APIKey:        c.apiKey,
		CurrentMember: true,
		Limit:         250,
		Format:        "json",
	})
	if err != nil {
		return nil, fmt.Errorf("encode member query: %w", err)
	}

	endpoint := c.baseURL + "/v3/member/" + url.PathEscape(state)
	var resp struct {
		Members []congressMember `json:"members"`
	}
	if err := c.http.GetJSON(ctx, endpoint+"?"+params.Encode(), endpoint, http.Header{}, &resp); err != nil {
		return nil, fmt.Errorf("list members for %s: %w", state, err)
	}

	if err := cache.SetJSON(ctx, c.cache, key, resp.Members, c.cacheTTL); err != nil {
		c.log.Warn("failed to cache congress members", "state", state, "error", err)
	}

	return resp.Members, nil
}

// detail fetches the member record; failures are logged and yield nil
func (c *Congress) detail(ctx context.Context, bioguideID string) *congressDetail {
	if bioguideID == "" {
		return nil
	}

	params, err := query.Values(congressDetailQuery{APIKey: c.apiKey, Format: "json"})
	if err != nil {
		return nil
	}

	endpoint := c.baseURL + "/v3/member/" + url.PathEscape(bioguideID)
	var resp struct {
		Member *congressDetail `json:"member"`
	}
	if err := c.http.GetJSON(ctx, endpoint+"?"+params.Encode(), endpoint, http.Header{}, &resp); err != nil {
		c.log.Warn("member detail unavailable", "bioguide_id", bioguideID, "error", err)
		return nil
	}

	return resp.Member
}
