// Package search runs catalog searches and ranks the results.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/types"
)

// HighConfidence is the score from which a match is shown as a strong hit.
const HighConfidence = 0.8

// ErrEmptyQuery is returned for a blank search.
var ErrEmptyQuery = errors.New("search query cannot be empty")

// Match is a search result with how closely its title matched the query.
type Match struct {
	Result     types.SearchResult `json:"result"`
	Confidence float64            `json:"confidence"`
}

// IsHighConfidence reports whether the match is a strong hit
func (m Match) IsHighConfidence() bool {
	return m.Confidence >= HighConfidence
}

// Searcher filters and ranks catalog search results.
type Searcher struct {
	catalog types.SearchService
	logger  *logrus.Logger
}

// NewSearcher creates a Searcher over catalog.
func NewSearcher(catalog types.SearchService, logger *logrus.Logger) *Searcher {
	return &Searcher{
		catalog: catalog,
		logger:  logger,
	}
}

// Search queries the catalog and keeps results passing filter. Results stay
// grouped by kind in catalog order (albums, artists, playlists, songs) and
// are ordered by confidence within each kind.
func (s *Searcher) Search(ctx context.Context, query string, filter types.SearchFilter) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	log := s.logger.WithFields(logrus.Fields{
		"component": "search",
		"operation": "search",
		"query":     query,
		"filter":    filter,
	})
	log.Debug("Starting catalog search")

	results, err := s.catalog.Search(ctx, query)
	if err != nil {
		log.WithError(err).Error("Catalog search failed")
		return nil, fmt.Errorf("failed to search for %q: %w", query, err)
	}

	kindOrder := map[types.SearchResultKind]int{}
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		if !filter.Matches(r.Kind) {
			continue
		}
		if _, seen := kindOrder[r.Kind]; !seen {
			kindOrder[r.Kind] = len(kindOrder)
		}
		matches = append(matches, Match{
			Result:     r,
			Confidence: MatchConfidence(query, r.Title()),
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if d := kindOrder[a.Result.Kind] - kindOrder[b.Result.Kind]; d != 0 {
			return d
		}
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})

	log.WithFields(logrus.Fields{
		"total":    len(results),
		"returned": len(matches),
	}).Info("Search completed")
	return matches, nil
}

// Tracks returns the track results of matches in order, for queueing.
func Tracks(matches []Match) []types.Track {
	var tracks []types.Track
	for _, m := range matches {
		if m.Result.Kind == types.KindTrack && m.Result.Track != nil {
			tracks = append(tracks, *m.Result.Track)
		}
	}
	return tracks
}
