package service

import (
	"context"
	"sort"
	"strings"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/repository"
)

// Match weights. A term found in several tags still counts once.
const (
	titleWeight       = 3
	descriptionWeight = 2
	tagWeight         = 1
)

type SearchResult struct {
	Artwork *domain.Artwork
	Score   int
}

// Searcher ranks artworks against a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// SubstringSearcher scans the whole collection for case-insensitive
// substring matches. Only fit for a small catalog.
type SubstringSearcher struct {
	artworkRepo repository.ArtworkRepository
}

func NewSubstringSearcher(artworkRepo repository.ArtworkRepository) *SubstringSearcher {
	return &SubstringSearcher{artworkRepo: artworkRepo}
}

func (s *SubstringSearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []SearchResult{}, nil
	}

	artworks, err := s.artworkRepo.ListRecent(ctx, 0)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, artwork := range artworks {
		if score := scoreArtwork(artwork, needle); score > 0 {
			results = append(results, SearchResult{Artwork: artwork, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scoreArtwork(artwork *domain.Artwork, needle string) int {
	score := 0
	if strings.Contains(strings.ToLower(artwork.Title), needle) {
		score += titleWeight
	}
	if strings.Contains(strings.ToLower(artwork.Description), needle) {
		score += descriptionWeight
	}
	for _, tag := range artwork.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			score += tagWeight
			break
		}
	}
	return score
}
