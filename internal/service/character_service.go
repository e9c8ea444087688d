package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	"github.com/fakhrymubarak/character-challenge-api/internal/model"
	"github.com/fakhrymubarak/character-challenge-api/internal/repository"
)

// Fixed selection criteria for /challengeapi.
const (
	StatusFilter  = "unknown"
	SpeciesFilter = "alien"
	// MinEpisodes is exclusive: a character must appear in more than this many episodes.
	MinEpisodes = 1
)

var (
	// ErrInvalidParameters means the upstream refused the query itself.
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrPaginationCycle   = errors.New("pagination cycle detected")
	ErrTooManyPages      = errors.New("page limit exceeded")
	ErrPagesConsumed     = errors.New("page sequence already consumed")
)

type CharacterServiceInterface interface {
	GetCharacters(ctx context.Context) ([]model.Character, error)
}

type CharacterService struct {
	CharacterRepo repository.CharacterRepository
	BaseURL       string
	MaxPages      int
}

func NewCharacterService(repo ...repository.CharacterRepository) *CharacterService {
	var characterRepo repository.CharacterRepository
	if len(repo) > 0 && repo[0] != nil {
		characterRepo = repo[0]
	} else {
		characterRepo = repository.NewCharacterRepository()
	}
	return &CharacterService{
		CharacterRepo: characterRepo,
		BaseURL:       config.GetCharacterApiUrl(),
		MaxPages:      config.GetMaxPages(),
	}
}

// InitialURL appends the fixed filter to base, keeping any query base already has.
func InitialURL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "status=" + url.QueryEscape(StatusFilter) + "&species=" + url.QueryEscape(SpeciesFilter)
}

// Pages lazily walks the upstream collection, one request per page, following
// info.next until it is null. The sequence ends after the first error it
// yields, and it can be ranged over only once.
//
// The upstream answers a filter with no matches with a 404 carrying its
// "nothing here" error; on the first page that ends the sequence without an
// error. Any other 404 is a failure.
func (s *CharacterService) Pages(ctx context.Context) iter.Seq2[*model.CharacterPage, error] {
	consumed := false
	return func(yield func(*model.CharacterPage, error) bool) {
		if consumed {
			yield(nil, ErrPagesConsumed)
			return
		}
		consumed = true

		maxPages := s.MaxPages
		if maxPages <= 0 {
			maxPages = config.GetMaxPages()
		}
		seen := make(map[string]struct{})
		next := InitialURL(s.baseURL())

		for fetched := 0; next != ""; fetched++ {
			if fetched >= maxPages {
				yield(nil, fmt.Errorf("%w: stopped after %d pages", ErrTooManyPages, maxPages))
				return
			}
			if _, ok := seen[next]; ok {
				yield(nil, fmt.Errorf("%w: %s", ErrPaginationCycle, next))
				return
			}
			seen[next] = struct{}{}

			page, err := s.CharacterRepo.FetchPage(ctx, next)
			if err != nil {
				if fetched == 0 && errors.Is(err, repository.ErrNoResults) {
					config.GetLogger().Debugw("Upstream has no characters for the filter", "url", next)
					return
				}
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			next = page.NextURL()
		}
	}
}

// GetCharacters collects every upstream character matching the fixed criteria,
// in upstream order. It returns an empty, non-nil slice when nothing matches.
func (s *CharacterService) GetCharacters(ctx context.Context) ([]model.Character, error) {
	started := time.Now()
	log := config.GetLogger()

	characters := make([]model.Character, 0)
	pages := 0
	for page, err := range s.Pages(ctx) {
		if err != nil {
			log.Errorw("Character aggregation failed", "pages", pages, "error", err)
			if errors.Is(err, repository.ErrBadRequest) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
			}
			return nil, err
		}
		pages++
		characters = appendMatching(characters, page.Characters())
	}

	log.Infow("Character aggregation finished",
		"pages", pages,
		"matches", len(characters),
		"duration", time.Since(started),
	)
	return characters, nil
}

func (s *CharacterService) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return config.GetCharacterApiUrl()
}

func appendMatching(dst []model.Character, raws []model.RawCharacter) []model.Character {
	for _, raw := range raws {
		if len(raw.Episode) > MinEpisodes {
			dst = append(dst, model.NewCharacter(raw))
		}
	}
	return dst
}
