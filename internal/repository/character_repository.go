package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	"github.com/fakhrymubarak/character-challenge-api/internal/metrics"
	"github.com/fakhrymubarak/character-challenge-api/internal/model"
	"github.com/fakhrymubarak/character-challenge-api/internal/redis"
	redisv9 "github.com/redis/go-redis/v9"
)

// Custom error types
var (
	ErrExternalAPI   = errors.New("external API error")
	ErrNotFound      = errors.New("upstream resource not found")
	ErrNoResults     = errors.New("upstream has no characters for the query")
	ErrBadRequest    = errors.New("upstream rejected the query")
	ErrMalformedPage = errors.New("malformed character page")
)

const cacheKeyPrefix = "character_page:"

// noResultsMessage is the error the character API returns with a 404 when a filter matches nothing.
const noResultsMessage = "There is nothing here"

// requiredFields must be present and non-null on every entry of a page.
var requiredFields = []string{"id", "name", "status", "species", "type", "gender", "origin", "location", "image", "episode"}

// maxErrorBody bounds how much of a failed upstream response ends up in an error message.
const maxErrorBody = 512

// UpstreamStatusError reports a non-200 answer from the character API.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("character API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("character API returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamStatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		if e.isNoResults() {
			return ErrNoResults
		}
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		return ErrExternalAPI
	}
}

// isNoResults reports whether the body is the provider's own "nothing matches" answer,
// as opposed to a 404 from a wrong URL or an intermediary.
func (e *UpstreamStatusError) isNoResults() bool {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return false
	}
	return body.Error == noResultsMessage
}

// CharacterRepository fetches single pages of the upstream character collection.
type CharacterRepository interface {
	FetchPage(ctx context.Context, pageURL string) (*model.CharacterPage, error)
}

// pageCache is the subset of the Redis client the repository needs.
type pageCache interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// characterRepository implements CharacterRepository
type characterRepository struct {
	httpClient *http.Client
	cache      pageCache // nil when caching is disabled
	cacheTTL   time.Duration
}

// NewCharacterRepository creates a repository backed by httpClient (or a
// client with the configured upstream timeout). Pages are cached in Redis
// only when cache.enabled is set.
func NewCharacterRepository(httpClient ...*http.Client) CharacterRepository {
	client := &http.Client{Timeout: config.GetUpstreamRequestTimeout()}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	repo := &characterRepository{
		httpClient: client,
		cacheTTL:   config.GetCacheExpiration(),
	}
	if config.IsCacheEnabled() {
		repo.cache = redis.GetClient()
	}
	return repo
}

// FetchPage returns one decoded page, from the cache when possible.
func (r *characterRepository) FetchPage(ctx context.Context, pageURL string) (*model.CharacterPage, error) {
	if page, err := r.getFromCache(ctx, pageURL); err == nil {
		return page, nil
	}

	body, err := r.fetchFromExternalAPI(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, err
	}

	r.cachePage(ctx, pageURL, body)
	return page, nil
}

func (r *characterRepository) getFromCache(ctx context.Context, pageURL string) (*model.CharacterPage, error) {
	if r.cache == nil {
		return nil, redisv9.Nil
	}

	val, err := r.cache.Get(ctx, cacheKeyPrefix+pageURL).Result()
	if err != nil {
		metrics.PageCacheMisses.Inc()
		if !errors.Is(err, redisv9.Nil) {
			config.GetLogger().Warnw("Page cache read failed", "url", pageURL, "error", err)
		}
		return nil, err
	}

	page, err := decodePage([]byte(val))
	if err != nil {
		metrics.PageCacheMisses.Inc()
		config.GetLogger().Warnw("Discarding unreadable cached page", "url", pageURL, "error", err)
		return nil, err
	}
	metrics.PageCacheHits.Inc()
	return page, nil
}

// fetchFromExternalAPI performs one GET against the character API and returns the raw body.
func (r *characterRepository) fetchFromExternalAPI(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(0, started)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(resp.StatusCode, started)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrExternalAPI, err)
	}
	return body, nil
}

func (r *characterRepository) cachePage(ctx context.Context, pageURL string, body []byte) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKeyPrefix+pageURL, body, r.cacheTTL).Err(); err != nil {
		config.GetLogger().Warnw("Page cache write failed", "url", pageURL, "error", err)
	}
}

func decodePage(body []byte) (*model.CharacterPage, error) {
	var page model.CharacterPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if page.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedPage)
	}
	if page.Info == nil {
		return nil, fmt.Errorf("%w: missing info", ErrMalformedPage)
	}
	if err := checkPageShape(body); err != nil {
		return nil, err
	}
	return &page, nil
}

// checkPageShape rejects pages whose cursor or entries lack keys the
// flattened character is built from. Absent keys would otherwise decode to
// zero values and pass as real data.
func checkPageShape(body []byte) error {
	var shape struct {
		Info    map[string]json.RawMessage   `json:"info"`
		Results []map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if _, ok := shape.Info["next"]; !ok {
		return fmt.Errorf("%w: info missing next", ErrMalformedPage)
	}

	for i, entry := range shape.Results {
		if entry == nil {
			return fmt.Errorf("%w: entry %d is null", ErrMalformedPage, i)
		}
		for _, field := range requiredFields {
			if isAbsent(entry[field]) {
				return fmt.Errorf("%w: entry %d missing %s", ErrMalformedPage, i, field)
			}
		}
		for _, field := range []string{"origin", "location"} {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(entry[field], &nested); err != nil || isAbsent(nested["name"]) {
				return fmt.Errorf("%w: entry %d missing %s.name", ErrMalformedPage, i, field)
			}
		}
	}
	return nil
}

func isAbsent(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}
