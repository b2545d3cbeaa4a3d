package container

import (
	"context"
	"fmt"

	"github.com/promptmyrep/civic/cmd/api/auth"
	"github.com/promptmyrep/civic/cmd/api/directory"
	"github.com/promptmyrep/civic/cmd/api/filter"
	"github.com/promptmyrep/civic/cmd/api/generation"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/bootstrap"
	"github.com/promptmyrep/civic/common/clients"
	"github.com/promptmyrep/civic/common/ratelimit"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	RepresentativeRepo *repository.RepresentativeRepository
	ProfileRepo        *repository.ProfileRepository
	ArticleRepo        *repository.ArticleRepository
	LetterRepo         *repository.LetterRepository

	// Directory adapters
	Census     *directory.Census
	Congress   *directory.Congress
	OpenStates *directory.OpenStates

	// Services
	LookupService         *service.LookupService
	RepresentativeService *service.RepresentativeService
	ProfileService        *service.ProfileService
	ArticleService        *service.ArticleService
	LetterService         *service.LetterService
	GenerationService     *generation.Service

	// Request plumbing
	Authenticator auth.Authenticator
	Limiter       ratelimit.Limiter
}

// NewContainer initializes all services and repositories once
func NewContainer(ctx context.Context, components *bootstrap.Components) (*Container, error) {
	cfg := components.Config
	log := components.Logger

	// Initialize repositories
	repRepo := repository.NewRepresentativeRepository(components.DB)
	profileRepo := repository.NewProfileRepository(components.DB)
	articleRepo := repository.NewArticleRepository(components.DB)
	letterRepo := repository.NewLetterRepository(components.DB)

	// Directory adapters share one instrumented HTTP client
	httpClient := clients.NewHTTPClient(nil, log)
	census, congress, openStates := NewDirectories(components, httpClient)

	evaluator, err := filter.NewEvaluator("rep")
	if err != nil {
		return nil, fmt.Errorf("failed to create filter evaluator: %w", err)
	}

	// Initialize services (bottom-up: dependencies first)
	lookupService := service.NewLookupService(
		census,
		congress,
		openStates,
		repRepo,
		components.Telemetry,
		log,
		service.LookupOptions{IncludeGovernor: cfg.Features.LookupIncludeGovernor},
	)
	repService := service.NewRepresentativeService(repRepo, evaluator, log)
	profileService := service.NewProfileService(profileRepo, log)
	articleService := service.NewArticleService(articleRepo, log)
	letterService := service.NewLetterService(letterRepo, log)

	var model generation.TextModel
	if cfg.Generation.GeminiAPIKey != "" {
		gemini, err := generation.NewGeminiModel(ctx, cfg.Generation.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		model = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, letter generation disabled")
	}
	generationService := generation.NewService(
		model,
		cfg.Generation.Model,
		cfg.Generation.FallbackModel,
		components.Telemetry,
		log,
	)

	authenticator := auth.NewSupabase(
		cfg.Auth.SupabaseURL,
		cfg.Auth.SupabaseAnonKey,
		cfg.Auth.JWTSecret,
		httpClient,
		components.Cache,
		cfg.Auth.CacheTTL,
		log,
	)

	c := &Container{
		Components:            components,
		RepresentativeRepo:    repRepo,
		ProfileRepo:           profileRepo,
		ArticleRepo:           articleRepo,
		LetterRepo:            letterRepo,
		Census:                census,
		Congress:              congress,
		OpenStates:            openStates,
		LookupService:         lookupService,
		RepresentativeService: repService,
		ProfileService:        profileService,
		ArticleService:        articleService,
		LetterService:         letterService,
		GenerationService:     generationService,
		Authenticator:         authenticator,
	}

	// Leave Limiter as a nil interface without Redis so the middleware skips it
	if components.Redis != nil {
		c.Limiter = ratelimit.NewRateLimiter(
			components.Redis.GetUnderlying(),
			log,
			ratelimit.WithOverrides(
				cfg.Generation.UserLimit,
				cfg.Generation.UserLimitWindow,
				cfg.Features.LookupUserLimit,
			),
		)
	} else {
		log.Warn("REDIS_ADDR not set, per-user rate limits disabled")
	}

	return c, nil
}

// NewDirectories builds the census, congress and state directory adapters
// and reports which of them have credentials.
func NewDirectories(components *bootstrap.Components, httpClient *clients.HTTPClient) (*directory.Census, *directory.Congress, *directory.OpenStates) {
	cfg := components.Config.Directory
	log := components.Logger

	census := directory.NewCensus(cfg.CensusURL, httpClient, log)
	congress := directory.NewCongress(
		cfg.CongressURL,
		cfg.CongressAPIKey,
		httpClient,
		components.Cache,
		cfg.MembersCacheTTL,
		log,
	)
	openStates := directory.NewOpenStates(cfg.OpenStatesURL, cfg.OpenStatesAPIKey, httpClient, log)

	components.Telemetry.SetAdapterEnabled("congress", congress.Enabled())
	components.Telemetry.SetAdapterEnabled("openstates", openStates.Enabled())

	if !congress.Enabled() {
		log.Warn("CONGRESS_GOV_API_KEY not set, federal representatives will be skipped")
	}
	if !openStates.Enabled() {
		log.Warn("OPENSTATES_API_KEY not set, state legislators and governors will be skipped")
	}

	return census, congress, openStates
}
