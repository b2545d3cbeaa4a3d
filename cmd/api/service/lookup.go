package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/directory"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/promptmyrep/civic/common/telemetry"
	"golang.org/x/sync/errgroup"
)

// ErrUserRequired is returned when a lookup has no user to save results for
var ErrUserRequired = errors.New("user id is required")

// ErrAddressRequired is returned for an empty address
var ErrAddressRequired = errors.New("address is required")

// Office names used in logs and metrics
const (
	OfficeHouse      = "house"
	OfficeSenate     = "senate"
	OfficeStateLower = "state_lower"
	OfficeStateUpper = "state_upper"
	OfficeGovernor   = "governor"
)

// Geocoder resolves an address to a state and district layers
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.AddressMatch, error)
}

// FederalDirectory finds members of Congress
type FederalDirectory interface {
	HouseRep(ctx context.Context, state, district string) (*models.Representative, error)
	Senators(ctx context.Context, state string) ([]*models.Representative, error)
}

// StateDirectory finds state officials
type StateDirectory interface {
	Legislator(ctx context.Context, state, district string, chamber models.Chamber) (*models.Representative, error)
	Governor(ctx context.Context, state string) (*models.Representative, error)
}

// RepresentativeStore persists representatives and user links
type RepresentativeStore interface {
	FindIDByExternalID(ctx context.Context, bioguideID string) (uuid.UUID, error)
	FindIDByComposite(ctx context.Context, name, state string, role models.Role) (uuid.UUID, error)
	Create(ctx context.Context, rep *models.Representative) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, rep *models.Representative) error
	UpsertUserLink(ctx context.Context, link *models.UserRepresentative) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.LinkedRepresentative, error)
}

// LookupOptions tune which offices a lookup resolves
type LookupOptions struct {
	IncludeGovernor bool
}

// LookupService resolves a user's representatives from an address and saves them
type LookupService struct {
	geocoder  Geocoder
	federal   FederalDirectory
	state     StateDirectory
	store     RepresentativeStore
	telemetry *telemetry.Telemetry
	log       *logger.Logger
	opts      LookupOptions
}

// NewLookupService creates a new lookup service. store may be nil for dry runs.
func NewLookupService(
	geocoder Geocoder,
	federal FederalDirectory,
	state StateDirectory,
	store RepresentativeStore,
	tel *telemetry.Telemetry,
	log *logger.Logger,
	opts LookupOptions,
) *LookupService {
	return &LookupService{
		geocoder:  geocoder,
		federal:   federal,
		state:     state,
		store:     store,
		telemetry: tel,
		log:       log,
		opts:      opts,
	}
}

// officeLookup is one independent directory query
type officeLookup struct {
	office string
	run    func(ctx context.Context) ([]*models.Representative, error)
}

// Lookup geocodes address, resolves every office and links the results to userID.
// Geocoder misses are returned as directory.ErrAddressNotFound or
// directory.ErrStateUnknown before any directory is queried.
func (s *LookupService) Lookup(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}

	match, err := s.Locate(ctx, address)
	if err != nil {
		return nil, err
	}

	reps := s.Resolve(ctx, match)
	saved := s.persist(ctx, userID, reps)

	logger.FromContext(ctx, s.log).Info("representatives linked",
		"state", match.State,
		"resolved", len(reps),
		"saved", saved,
	)

	return &models.LookupSummary{
		Found:      true,
		State:      match.State,
		SavedCount: saved,
		Districts:  match.Districts,
	}, nil
}

// Locate geocodes an address
func (s *LookupService) Locate(ctx context.Context, address string) (*models.AddressMatch, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}

	defer s.telemetry.RecordDuration("geocode", time.Now())

	match, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if directory.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}
	return match, nil
}

// Resolve queries every office concurrently and returns the representatives found
// in a fixed order: house, senators, state lower, state upper, governor.
// A failing query is logged and contributes nothing; it never fails the others.
func (s *LookupService) Resolve(ctx context.Context, match *models.AddressMatch) []*models.Representative {
	defer s.telemetry.RecordDuration("resolve_offices", time.Now())

	lookups := s.officeLookups(match)
	results := make([][]*models.Representative, len(lookups))

	var g errgroup.Group
	for i, l := range lookups {
		g.Go(func() error {
			results[i] = s.runLookup(ctx, l)
			return nil
		})
	}
	_ = g.Wait()

	var reps []*models.Representative
	for _, found := range results {
		reps = append(reps, found...)
	}
	return reps
}

func (s *LookupService) officeLookups(match *models.AddressMatch) []officeLookup {
	state := match.State
	federal := models.Deref(match.Districts.Federal.District)
	lower := models.Deref(match.Districts.StateLower.District)
	upper := models.Deref(match.Districts.StateUpper.District)

	lookups := []officeLookup{
		{office: OfficeHouse, run: func(ctx context.Context) ([]*models.Representative, error) {
			return single(s.federal.HouseRep(ctx, state, federal))
		}},
		{office: OfficeSenate, run: func(ctx context.Context) ([]*models.Representative, error) {
			return s.federal.Senators(ctx, state)
		}},
		{office: OfficeStateLower, run: func(ctx context.Context) ([]*models.Representative, error) {
			return single(s.state.Legislator(ctx, state, lower, models.ChamberLower))
		}},
		{office: OfficeStateUpper, run: func(ctx context.Context) ([]*models.Representative, error) {
			return single(s.state.Legislator(ctx, state, upper, models.ChamberUpper))
		}},
	}

	if s.opts.IncludeGovernor {
		lookups = append(lookups, officeLookup{office: OfficeGovernor, run: func(ctx context.Context) ([]*models.Representative, error) {
			return single(s.state.Governor(ctx, state))
		}})
	}

	return lookups
}

// runLookup isolates one office query, converting errors and panics into an empty result
func (s *LookupService) runLookup(ctx context.Context, l officeLookup) (reps []*models.Representative) {
	log := logger.FromContext(ctx, s.log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("office lookup panicked", "office", l.office, "panic", r)
			s.telemetry.RecordLookup(l.office, telemetry.OutcomeError)
			reps = nil
		}
	}()

	found, err := l.run(ctx)
	switch {
	case errors.Is(err, directory.ErrAdapterDisabled):
		log.Warn("office lookup skipped", "office", l.office, "error", err)
		s.telemetry.RecordLookup(l.office, telemetry.OutcomeDisabled)
		return nil
	case err != nil:
		log.Warn("office lookup failed", "office", l.office, "error", err)
		s.telemetry.RecordLookup(l.office, telemetry.OutcomeError)
		return nil
	}

	// Drop nil entries so callers only see real records
	reps = found[:0:0]
	for _, rep := range found {
		if rep != nil {
			reps = append(reps, rep)
		}
	}

	outcome := telemetry.OutcomeFound
	if len(reps) == 0 {
		outcome = telemetry.OutcomeEmpty
	}
	s.telemetry.RecordLookup(l.office, outcome)
	return reps
}

func single(rep *models.Representative, err error) ([]*models.Representative, error) {
	if err != nil || rep == nil {
		return nil, err
	}
	return []*models.Representative{rep}, nil
}

// persist saves each representative and links it to the user in order.
// Failures skip that record; the return value counts fully saved records.
func (s *LookupService) persist(ctx context.Context, userID uuid.UUID, reps []*models.Representative) int {
	if s.store == nil {
		return 0
	}

	log := logger.FromContext(ctx, s.log)
	saved := 0

	for _, rep := range reps {
		id, err := s.save(ctx, rep)
		if err != nil {
			log.Warn("failed to save representative", "name", rep.Name, "role", rep.Role, "error", err)
			continue
		}
		rep.ID = id

		link := &models.UserRepresentative{UserID: userID, RepID: id, IsPrimary: true}
		if err := s.store.UpsertUserLink(ctx, link); err != nil {
			log.Warn("failed to link representative", "rep_id", id, "error", err)
			continue
		}
		saved++
	}

	return saved
}

// save updates the matching row, or inserts one when none exists
func (s *LookupService) save(ctx context.Context, rep *models.Representative) (uuid.UUID, error) {
	var (
		id  uuid.UUID
		err error
	)
	if rep.HasExternalID() {
		id, err = s.store.FindIDByExternalID(ctx, *rep.BioguideID)
	} else {
		id, err = s.store.FindIDByComposite(ctx, rep.Name, rep.State, rep.Role)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.store.Create(ctx, rep)
	case err != nil:
		return uuid.Nil, err
	}

	if err := s.store.Update(ctx, id, rep); err != nil {
		// The row exists, so the link is still worth making
		logger.FromContext(ctx, s.log).Warn("failed to refresh representative", "rep_id", id, "error", err)
	}
	return id, nil
}
