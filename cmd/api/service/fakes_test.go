package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
)

type mockGeocoder struct {
	GeocodeFunc func(ctx context.Context, address string) (*models.AddressMatch, error)
	calls       int
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*models.AddressMatch, error) {
	m.calls++
	return m.GeocodeFunc(ctx, address)
}

type mockFederal struct {
	mu           sync.Mutex
	calls        []string
	HouseRepFunc func(ctx context.Context, state, district string) (*models.Representative, error)
	SenatorsFunc func(ctx context.Context, state string) ([]*models.Representative, error)
}

func (m *mockFederal) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockFederal) HouseRep(ctx context.Context, state, district string) (*models.Representative, error) {
	m.record("house:" + state + ":" + district)
	if m.HouseRepFunc == nil {
		return nil, nil
	}
	return m.HouseRepFunc(ctx, state, district)
}

func (m *mockFederal) Senators(ctx context.Context, state string) ([]*models.Representative, error) {
	m.record("senate:" + state)
	if m.SenatorsFunc == nil {
		return nil, nil
	}
	return m.SenatorsFunc(ctx, state)
}

type mockState struct {
	mu             sync.Mutex
	calls          []string
	LegislatorFunc func(ctx context.Context, state, district string, chamber models.Chamber) (*models.Representative, error)
	GovernorFunc   func(ctx context.Context, state string) (*models.Representative, error)
}

func (m *mockState) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockState) Legislator(ctx context.Context, state, district string, chamber models.Chamber) (*models.Representative, error) {
	m.record(string(chamber) + ":" + state + ":" + district)
	if m.LegislatorFunc == nil {
		return nil, nil
	}
	return m.LegislatorFunc(ctx, state, district, chamber)
}

func (m *mockState) Governor(ctx context.Context, state string) (*models.Representative, error) {
	m.record("governor:" + state)
	if m.GovernorFunc == nil {
		return nil, nil
	}
	return m.GovernorFunc(ctx, state)
}

// memoryStore is an in-memory RepresentativeStore
type memoryStore struct {
	mu      sync.Mutex
	reps    map[uuid.UUID]*models.Representative
	links   map[[2]uuid.UUID]models.UserRepresentative
	creates int
	updates int

	createErr func(rep *models.Representative) error
	linkErr   func(link *models.UserRepresentative) error
	findErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		reps:  make(map[uuid.UUID]*models.Representative),
		links: make(map[[2]uuid.UUID]models.UserRepresentative),
	}
}

func (s *memoryStore) FindIDByExternalID(ctx context.Context, bioguideID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return uuid.Nil, s.findErr
	}
	for id, rep := range s.reps {
		if models.Deref(rep.BioguideID) == bioguideID {
			return id, nil
		}
	}
	return uuid.Nil, repository.ErrNotFound
}

func (s *memoryStore) FindIDByComposite(ctx context.Context, name, state string, role models.Role) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return uuid.Nil, s.findErr
	}
	for id, rep := range s.reps {
		if rep.Name == name && rep.State == state && rep.Role == role {
			return id, nil
		}
	}
	return uuid.Nil, repository.ErrNotFound
}

func (s *memoryStore) Create(ctx context.Context, rep *models.Representative) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		if err := s.createErr(rep); err != nil {
			return uuid.Nil, err
		}
	}
	s.creates++
	id := uuid.New()
	stored := *rep
	stored.ID = id
	s.reps[id] = &stored
	return id, nil
}

func (s *memoryStore) Update(ctx context.Context, id uuid.UUID, rep *models.Representative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reps[id]; !ok {
		return repository.ErrNotFound
	}
	s.updates++
	stored := *rep
	stored.ID = id
	s.reps[id] = &stored
	return nil
}

func (s *memoryStore) UpsertUserLink(ctx context.Context, link *models.UserRepresentative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.linkErr != nil {
		if err := s.linkErr(link); err != nil {
			return err
		}
	}
	s.links[[2]uuid.UUID{link.UserID, link.RepID}] = *link
	return nil
}

func (s *memoryStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.LinkedRepresentative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.LinkedRepresentative
	for key, link := range s.links {
		if key[0] != userID {
			continue
		}
		out = append(out, &models.LinkedRepresentative{IsPrimary: link.IsPrimary, Representative: s.reps[key[1]]})
	}
	return out, nil
}

var errBoom = errors.New("boom")
