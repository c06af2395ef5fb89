package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/config"
	"github.com/starfusion/engine/pkg/models"
)

// mockFetcher records every requested URL and answers via respond.
type mockFetcher struct {
	mu      sync.Mutex
	calls   []string
	respond func(url string) (json.RawMessage, error)
}

func (m *mockFetcher) GetJSON(_ context.Context, url string) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	return m.respond(url)
}

func (m *mockFetcher) callsTo(substr string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []string
	for _, c := range m.calls {
		if strings.Contains(c, substr) {
			matched = append(matched, c)
		}
	}
	return matched
}

type mockHistoryRepo struct {
	mu           sync.Mutex
	inserted     []*models.MergeRecord
	getFreshFunc func(ctx context.Context, maxAge time.Duration) (*models.MergeRecord, error)
	insertFunc   func(ctx context.Context, record *models.MergeRecord) error
	listFunc     func(ctx context.Context, limit int, ascending bool) ([]*models.MergeRecord, error)
}

func (m *mockHistoryRepo) GetFresh(ctx context.Context, maxAge time.Duration) (*models.MergeRecord, error) {
	if m.getFreshFunc != nil {
		return m.getFreshFunc(ctx, maxAge)
	}
	return nil, nil
}

func (m *mockHistoryRepo) Insert(ctx context.Context, record *models.MergeRecord) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, record)
	}
	m.mu.Lock()
	m.inserted = append(m.inserted, record)
	m.mu.Unlock()
	return nil
}

func (m *mockHistoryRepo) List(ctx context.Context, limit int, ascending bool) ([]*models.MergeRecord, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, ascending)
	}
	return nil, nil
}

func (m *mockHistoryRepo) insertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

const (
	peopleURL  = "https://people.test/api/people"
	weatherURL = "https://weather.test/v1/forecast"
)

func testSources() config.SourcesConfig {
	return config.SourcesConfig{
		PeopleURL:        peopleURL,
		WeatherURL:       weatherURL,
		WeatherLongitude: "167.6917",
	}
}

func testPipeline(concurrency int) config.PipelineConfig {
	return config.PipelineConfig{
		CacheTTL:          time.Minute,
		EnrichConcurrency: concurrency,
	}
}

func characterDoc(name string, planet int) string {
	return fmt.Sprintf(`{
		"name": %q,
		"height": "172",
		"homeworld": "https://people.test/api/planets/%d/",
		"url": "https://people.test/api/people/%d/"
	}`, name, planet, planet)
}

func peoplePayload(docs ...string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"results": [%s]}`, strings.Join(docs, ",")))
}

const weatherDoc = `{
	"latitude": 1.6895,
	"longitude": 167.6917,
	"current_weather": {"temperature": 20}
}`

func newService(fetcher *mockFetcher, history *mockHistoryRepo, concurrency int) MergeService {
	return NewMergeService(fetcher, history, testSources(), testPipeline(concurrency), zap.NewNop())
}

func TestMergeService_EnrichesEveryCharacter(t *testing.T) {
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(
				characterDoc("Luke Skywalker", 1),
				characterDoc("Leia Organa", 2),
				characterDoc("Han Solo", 22),
			), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Empty(t, result.Error)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Entities, 3)
	assert.Len(t, fetcher.callsTo(weatherURL), 3, "one enrichment call per character")

	luke := result.Entities[0]
	assert.Equal(t, "Luke Skywalker", luke.Name)
	require.NotNil(t, luke.Enrichment.Current)
	require.NotNil(t, luke.Enrichment.Current.Temperature)
	assert.Equal(t, 20.0, *luke.Enrichment.Current.Temperature)
}

func TestMergeService_PrimaryFailureSkipsEnrichment(t *testing.T) {
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return nil, &apperrors.FetchError{URL: url, Status: 503, StatusText: "Service Unavailable"}
		}
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Entities)
	assert.Contains(t, result.Error, "503")
	assert.Empty(t, fetcher.callsTo(weatherURL), "no enrichment after primary failure")
	assert.Zero(t, history.insertCount(), "failures are never persisted")
}

func TestMergeService_OneEnrichmentFailureRejectsAll(t *testing.T) {
	var weatherCalls atomic.Int32
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(
				characterDoc("Luke Skywalker", 1),
				characterDoc("Leia Organa", 2),
				characterDoc("Han Solo", 22),
			), nil
		}
		if weatherCalls.Add(1) == 2 {
			return nil, &apperrors.NetworkError{URL: url, Err: errors.New("connection reset")}
		}
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Entities)
	assert.NotEmpty(t, result.Error)
	assert.Zero(t, history.insertCount())
}

func TestMergeService_InvalidCharacterRejectsAll(t *testing.T) {
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(
				characterDoc("Luke Skywalker", 1),
				`{"name": "No Homeworld", "url": "https://people.test/api/people/9/"}`,
			), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Equal(t, 0, result.TotalCount)
	assert.Contains(t, result.Error, "homeworld")
	assert.Empty(t, fetcher.callsTo(weatherURL), "invalid list is rejected before enrichment")
}

func TestMergeService_FreshSnapshotShortCircuits(t *testing.T) {
	entities := []models.MergedCharacter{
		{Character: models.Character{Name: "Luke Skywalker", Homeworld: "https://people.test/api/planets/1/", URL: "https://people.test/api/people/1/"}},
	}
	payload, err := json.Marshal(entities)
	require.NoError(t, err)

	history := &mockHistoryRepo{
		getFreshFunc: func(_ context.Context, maxAge time.Duration) (*models.MergeRecord, error) {
			assert.Equal(t, time.Minute, maxAge)
			return &models.MergeRecord{
				TotalCount: 1,
				Payload:    payload,
				CreatedAt:  time.Now().Add(-30 * time.Second).UnixMilli(),
			}, nil
		},
	}
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		t.Errorf("unexpected fetch of %s while a fresh snapshot exists", url)
		return nil, errors.New("unexpected")
	}}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Luke Skywalker", result.Entities[0].Name)
	assert.Zero(t, history.insertCount(), "cache hits are not re-persisted")
}

func TestMergeService_StaleSnapshotTriggersFullRun(t *testing.T) {
	// GetFresh applies the TTL window itself, so a stale-only store
	// reports a miss.
	history := &mockHistoryRepo{
		getFreshFunc: func(context.Context, time.Duration) (*models.MergeRecord, error) {
			return nil, nil
		},
	}
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(characterDoc("Luke Skywalker", 1)), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Equal(t, 1, result.TotalCount)
	assert.Len(t, fetcher.callsTo(peopleURL), 1)
	assert.Equal(t, 1, history.insertCount(), "fresh run is persisted")
}

func TestMergeService_CacheQueryErrorIsFailure(t *testing.T) {
	history := &mockHistoryRepo{
		getFreshFunc: func(context.Context, time.Duration) (*models.MergeRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		t.Errorf("unexpected fetch of %s when the cache store is unreachable", url)
		return nil, errors.New("unexpected")
	}}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Entities)
	assert.NotEmpty(t, result.Error)
}

func TestMergeService_CorruptSnapshotIsAMiss(t *testing.T) {
	history := &mockHistoryRepo{
		getFreshFunc: func(context.Context, time.Duration) (*models.MergeRecord, error) {
			return &models.MergeRecord{Payload: []byte("{not json")}, nil
		},
	}
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(characterDoc("Luke Skywalker", 1)), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.TotalCount)
}

func TestMergeService_PersistFailureStillSucceeds(t *testing.T) {
	history := &mockHistoryRepo{
		insertFunc: func(context.Context, *models.MergeRecord) error {
			return errors.New("disk full")
		},
	}
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(characterDoc("Luke Skywalker", 1)), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.TotalCount)
}

func TestMergeService_WeatherQueryDerivation(t *testing.T) {
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(
				characterDoc("Luke Skywalker", 1),
				`{"name": "Drifter", "homeworld": "https://people.test/api/worlds/unknown/", "url": "https://people.test/api/people/7/"}`,
				characterDoc("Far Out", 200),
			), nil
		}
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())
	require.Empty(t, result.Error)

	weatherCalls := fetcher.callsTo(weatherURL)
	require.Len(t, weatherCalls, 3)

	joined := strings.Join(weatherCalls, "\n")
	assert.Contains(t, joined, "latitude=1.6895", "planet 1 maps to latitude 1.6895")
	assert.Contains(t, joined, "latitude=0.6895", "no planet segment maps to planet 0")
	assert.Contains(t, joined, "latitude=90&", "latitude is clamped at 90")
	for _, call := range weatherCalls {
		assert.Contains(t, call, "longitude=167.6917")
		assert.Contains(t, call, "current_weather=true")
	}
}

func TestMergeService_OrderPreservedUnderConcurrencyCap(t *testing.T) {
	const total = 8
	docs := make([]string, total)
	for i := range docs {
		docs[i] = characterDoc(fmt.Sprintf("Character %c", 'A'+i), i+1)
	}

	var inFlight, peak atomic.Int32
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return peoplePayload(docs...), nil
		}
		current := inFlight.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		// Early lookups finish last to shuffle completion order.
		if strings.Contains(url, "latitude=1.6895") || strings.Contains(url, "latitude=2.6895") {
			time.Sleep(30 * time.Millisecond)
		} else {
			time.Sleep(5 * time.Millisecond)
		}
		inFlight.Add(-1)
		return json.RawMessage(weatherDoc), nil
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 3).GetMergedData(context.Background())

	require.Empty(t, result.Error)
	require.Len(t, result.Entities, total)
	for i, entity := range result.Entities {
		assert.Equal(t, fmt.Sprintf("Character %c", 'A'+i), entity.Name,
			"entity order must match source order")
	}
	assert.LessOrEqual(t, peak.Load(), int32(3), "in-flight enrichment must respect the cap")
}

func TestMergeService_EmptyListSucceeds(t *testing.T) {
	fetcher := &mockFetcher{respond: func(url string) (json.RawMessage, error) {
		if url == peopleURL {
			return json.RawMessage(`{"results": []}`), nil
		}
		t.Errorf("unexpected enrichment call %s for an empty list", url)
		return nil, errors.New("unexpected")
	}}
	history := &mockHistoryRepo{}

	result := newService(fetcher, history, 5).GetMergedData(context.Background())

	assert.Empty(t, result.Error)
	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Entities)
	assert.Equal(t, 1, history.insertCount(), "an empty successful run is still a snapshot")
}
