package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/clients"
	"github.com/starfusion/engine/pkg/config"
	"github.com/starfusion/engine/pkg/jsonutil"
	"github.com/starfusion/engine/pkg/models"
	"github.com/starfusion/engine/pkg/repositories"
	"github.com/starfusion/engine/pkg/services/workqueue"
	"github.com/starfusion/engine/pkg/validators"
)

// homeworldPlanetPattern extracts the planet number from a homeworld URL.
// URLs without a planet segment map to planet 0.
var homeworldPlanetPattern = regexp.MustCompile(`/planets/(\d+)`)

const (
	latitudeOffset = 0.6895
	maxLatitude    = 90
)

// MergeService runs the merge pipeline: fetch the character list, enrich
// every character with a weather lookup, and persist the merged snapshot.
// The result is all-or-nothing; any upstream or validation failure yields
// the canonical empty result.
type MergeService interface {
	GetMergedData(ctx context.Context) models.MergedResult
}

type mergeService struct {
	fetcher  clients.Fetcher
	history  repositories.MergeHistoryRepository
	sources  config.SourcesConfig
	pipeline config.PipelineConfig
	logger   *zap.Logger
}

// NewMergeService creates a MergeService.
func NewMergeService(
	fetcher clients.Fetcher,
	history repositories.MergeHistoryRepository,
	sources config.SourcesConfig,
	pipeline config.PipelineConfig,
	logger *zap.Logger,
) MergeService {
	return &mergeService{
		fetcher:  fetcher,
		history:  history,
		sources:  sources,
		pipeline: pipeline,
		logger:   logger.Named("merge"),
	}
}

var _ MergeService = (*mergeService)(nil)

func (s *mergeService) GetMergedData(ctx context.Context) models.MergedResult {
	cached, err := s.freshSnapshot(ctx)
	if err != nil {
		s.logger.Error("Cache lookup failed", zap.Error(err))
		return models.FailedResult(err)
	}
	if cached != nil {
		s.logger.Info("Serving cached snapshot",
			zap.Int("total_count", cached.TotalCount))
		return *cached
	}

	characters, err := s.fetchCharacters(ctx)
	if err != nil {
		s.logger.Error("Character fetch failed", zap.Error(err))
		return models.FailedResult(err)
	}

	entities, err := s.enrichAll(ctx, characters)
	if err != nil {
		s.logger.Error("Enrichment failed", zap.Error(err))
		return models.FailedResult(err)
	}

	result := models.MergedResult{
		TotalCount: len(entities),
		Entities:   entities,
	}

	// A snapshot that cannot be persisted is still a valid response.
	if err := s.persistSnapshot(ctx, result); err != nil {
		s.logger.Error("Failed to persist merge snapshot", zap.Error(err))
	}

	return result
}

// freshSnapshot returns the cached result when a snapshot younger than the
// TTL exists. A record whose payload no longer decodes is treated as a miss.
func (s *mergeService) freshSnapshot(ctx context.Context) (*models.MergedResult, error) {
	record, err := s.history.GetFresh(ctx, s.pipeline.CacheTTL)
	if err != nil {
		return nil, &apperrors.CacheError{Op: "get fresh snapshot", Err: err}
	}
	if record == nil {
		return nil, nil
	}

	var entities []models.MergedCharacter
	if err := json.Unmarshal(record.Payload, &entities); err != nil {
		s.logger.Warn("Cached snapshot payload is unreadable, refetching",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
		return nil, nil
	}

	return &models.MergedResult{
		TotalCount: record.TotalCount,
		Entities:   entities,
	}, nil
}

func (s *mergeService) fetchCharacters(ctx context.Context) ([]models.Character, error) {
	raw, err := s.fetcher.GetJSON(ctx, s.sources.PeopleURL)
	if err != nil {
		return nil, err
	}

	items := jsonutil.ResultsArray(raw)
	return validators.ValidateCharacterList(items)
}

// enrichAll fans out one weather lookup per character, capped at the
// configured concurrency with FIFO admission. Results land at the same
// index as their character, so output order matches input order no matter
// how the lookups interleave.
func (s *mergeService) enrichAll(ctx context.Context, characters []models.Character) ([]models.MergedCharacter, error) {
	entities := make([]models.MergedCharacter, len(characters))

	limiter := workqueue.NewLimiter(s.pipeline.EnrichConcurrency, s.logger)
	for i, character := range characters {
		url := s.weatherURL(character.Homeworld)

		limiter.Submit(ctx, character.Name, func(ctx context.Context) error {
			raw, err := s.fetcher.GetJSON(ctx, url)
			if err != nil {
				return err
			}
			weather, err := validators.ValidateWeather(raw)
			if err != nil {
				return err
			}
			entities[i] = models.MergedCharacter{
				Character:  character,
				Enrichment: *weather,
			}
			return nil
		})
	}

	if err := limiter.Wait(); err != nil {
		return nil, err
	}
	return entities, nil
}

// weatherURL derives the forecast query for a character. The latitude comes
// from the homeworld's planet number; the longitude is fixed.
func (s *mergeService) weatherURL(homeworld string) string {
	planet := 0
	if m := homeworldPlanetPattern.FindStringSubmatch(homeworld); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			planet = n
		}
	}

	latitude := float64(planet) + latitudeOffset
	if latitude > maxLatitude {
		latitude = maxLatitude
	}

	return fmt.Sprintf("%s?latitude=%s&longitude=%s&current_weather=true",
		s.sources.WeatherURL,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		s.sources.WeatherLongitude)
}

func (s *mergeService) persistSnapshot(ctx context.Context, result models.MergedResult) error {
	payload, err := json.Marshal(result.Entities)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	record := &models.MergeRecord{
		PartitionTag: models.PartitionTagHistory,
		TotalCount:   result.TotalCount,
		Payload:      payload,
	}
	return s.history.Insert(ctx, record)
}
