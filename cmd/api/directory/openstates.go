package directory

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/clients"
)

type osPeopleQuery struct {
	Jurisdiction      string `url:"jurisdiction"`
	District          string `url:"district,omitempty"`
	OrgClassification string `url:"org_classification,omitempty"`
	OrgID             string `url:"org_id,omitempty"`
	Include           string `url:"include,omitempty"`
}

type osOrganizationQuery struct {
	Jurisdiction   string `url:"jurisdiction"`
	Classification string `url:"classification"`
}

type osPerson struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Image       string `json:"image"`
	Email       string `json:"email"`
	CurrentRole *struct {
		Title             string     `json:"title"`
		OrgClassification string     `json:"org_classification"`
		District          flexString `json:"district"`
	} `json:"current_role"`
	Offices []osOffice `json:"offices"`
	Links   []struct {
		URL string `json:"url"`
	} `json:"links"`
}

type osOffice struct {
	Classification string `json:"classification"`
	Voice          string `json:"voice"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

type osOrganization struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
}

type osPage[T any] struct {
	Results []T `json:"results"`
}

// governorStrategy is one way of finding the sitting governor.
// A nil person with a nil error means the strategy found nothing.
type governorStrategy struct {
	name string
	find func(ctx context.Context, jurisdiction string) (*osPerson, error)
}

// OpenStates looks up state legislators and governors
type OpenStates struct {
	http    *clients.HTTPClient
	baseURL string
	apiKey  string
	log     Logger
}

// NewOpenStates creates a new OpenStates adapter. An empty apiKey leaves it disabled.
func NewOpenStates(baseURL, apiKey string, httpClient *clients.HTTPClient, log Logger) *OpenStates {
	return &OpenStates{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
	}
}

// Enabled reports whether the adapter has credentials
func (o *OpenStates) Enabled() bool {
	return o.apiKey != ""
}

// Legislator returns the first member of a state chamber for a district,
// or nil when none is found or district is empty.
func (o *OpenStates) Legislator(ctx context.Context, state, district string, chamber models.Chamber) (*models.Representative, error) {
	if !o.Enabled() {
		return nil, ErrAdapterDisabled
	}
	if district == "" {
		return nil, nil
	}

	clean := cleanDistrict(district)
	people, err := o.people(ctx, osPeopleQuery{
		Jurisdiction:      jurisdictionID(state),
		District:          clean,
		OrgClassification: string(chamber),
		Include:           "offices",
	})
	if err != nil {
		return nil, fmt.Errorf("list %s legislators for %s-%s: %w", chamber, state, clean, err)
	}

	if len(people) == 0 {
		o.log.Warn("no state legislator matched", "state", state, "district", clean, "chamber", chamber)
		return nil, nil
	}

	role := models.RoleStateRepresentative
	if chamber == models.ChamberUpper {
		role = models.RoleStateSenator
	}

	return normalizeStatePerson(people[0], role, state, clean), nil
}

// Governor returns the sitting governor, trying each lookup strategy in order.
// Strategy failures are logged and the next strategy runs; nil means none found.
func (o *OpenStates) Governor(ctx context.Context, state string) (*models.Representative, error) {
	if !o.Enabled() {
		return nil, ErrAdapterDisabled
	}

	jurisdiction := jurisdictionID(state)
	for _, s := range o.governorStrategies() {
		p, err := s.find(ctx, jurisdiction)
		if err != nil {
			o.log.Warn("governor strategy failed", "strategy", s.name, "state", state, "error", err)
			continue
		}
		if p != nil {
			o.log.Debug("governor found", "strategy", s.name, "state", state)
			return normalizeStatePerson(*p, models.RoleGovernor, state, models.StatewideDistrict), nil
		}
	}

	o.log.Warn("governor not found", "state", state)
	return nil, nil
}

func (o *OpenStates) governorStrategies() []governorStrategy {
	return []governorStrategy{
		{name: "executive_people", find: o.governorFromExecutivePeople},
		{name: "executive_organization", find: o.governorFromExecutiveOrganization},
	}
}

// governorFromExecutivePeople filters executive-branch people by title
func (o *OpenStates) governorFromExecutivePeople(ctx context.Context, jurisdiction string) (*osPerson, error) {
	people, err := o.people(ctx, osPeopleQuery{
		Jurisdiction:      jurisdiction,
		OrgClassification: "executive",
		Include:           "offices",
	})
	if err != nil {
		return nil, err
	}
	return findGovernor(people), nil
}

// governorFromExecutiveOrganization locates the governor's office and lists its people.
// Falls back to the first organization and then the first person.
func (o *OpenStates) governorFromExecutiveOrganization(ctx context.Context, jurisdiction string) (*osPerson, error) {
	params, err := query.Values(osOrganizationQuery{Jurisdiction: jurisdiction, Classification: "executive"})
	if err != nil {
		return nil, err
	}

	var orgs osPage[osOrganization]
	if err := o.get(ctx, "organizations", params.Encode(), &orgs); err != nil {
		return nil, err
	}
	if len(orgs.Results) == 0 {
		return nil, nil
	}

	org := orgs.Results[0]
	for _, candidate := range orgs.Results {
		if strings.Contains(strings.ToLower(candidate.Name), "governor") {
			org = candidate
			break
		}
	}

	people, err := o.people(ctx, osPeopleQuery{
		Jurisdiction: jurisdiction,
		OrgID:        org.ID,
		Include:      "offices",
	})
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, nil
	}

	if p := findGovernor(people); p != nil {
		return p, nil
	}
	return &people[0], nil
}

// findGovernor matches on the role title; lieutenant governors are skipped
func findGovernor(people []osPerson) *osPerson {
	for i := range people {
		role := people[i].CurrentRole
		if role == nil {
			continue
		}
		title := strings.ToLower(role.Title)
		if strings.Contains(title, "governor") && !strings.Contains(title, "lieutenant") {
			return &people[i]
		}
	}
	return nil
}

func (o *OpenStates) people(ctx context.Context, q osPeopleQuery) ([]osPerson, error) {
	params, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("encode people query: %w", err)
	}

	var page osPage[osPerson]
	if err := o.get(ctx, "people", params.Encode(), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (o *OpenStates) get(ctx context.Context, endpoint, rawQuery string, dst any) error {
	target := o.baseURL + "/" + endpoint
	headers := http.Header{}
	headers.Set("X-API-KEY", o.apiKey)
	return o.http.GetJSON(ctx, target+"?"+rawQuery, target, headers, dst)
}

func jurisdictionID(state string) string {
	return "ocd-jurisdiction/country:us/state:" + strings.ToLower(state) + "/government"
}
