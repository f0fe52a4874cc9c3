// Package browse assembles the catalog landing views.
package browse

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/types"
)

// SeedCount is how many genre seeds feed the home recommendations.
const SeedCount = 5

// Service loads browse views from the catalog.
type Service struct {
	catalog types.BrowseService
	logger  *logrus.Logger
	shuffle func(n int, swap func(i, j int))
}

// NewService creates a browse service over catalog.
func NewService(catalog types.BrowseService, logger *logrus.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
		shuffle: rand.Shuffle,
	}
}

func (s *Service) log(operation string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "browse",
		"operation": operation,
	})
}

// Home fetches new releases, featured playlists and recommendations
// concurrently. A section that fails is left empty; the returned error joins
// every section failure, so a partial feed comes back with a non-nil error.
func (s *Service) Home(ctx context.Context) (*types.HomeFeed, error) {
	var (
		feed types.HomeFeed
		wg   sync.WaitGroup
		errs [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		albums, err := s.catalog.NewReleases(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("new releases: %w", err)
			return
		}
		feed.NewReleases = albums
	}()
	go func() {
		defer wg.Done()
		playlists, err := s.catalog.FeaturedPlaylists(ctx)
		if err != nil {
			errs[1] = fmt.Errorf("featured playlists: %w", err)
			return
		}
		feed.FeaturedPlaylists = playlists
	}()
	go func() {
		defer wg.Done()
		tracks, err := s.recommendations(ctx)
		if err != nil {
			errs[2] = fmt.Errorf("recommendations: %w", err)
			return
		}
		feed.Recommendations = tracks
	}()
	wg.Wait()

	err := errors.Join(errs[:]...)
	entry := s.log("home").WithFields(logrus.Fields{
		"new_releases":    len(feed.NewReleases),
		"featured":        len(feed.FeaturedPlaylists),
		"recommendations": len(feed.Recommendations),
	})
	if err != nil {
		entry.WithError(err).Warn("Home feed is incomplete")
	} else {
		entry.Debug("Loaded home feed")
	}
	return &feed, err
}

func (s *Service) recommendations(ctx context.Context) ([]types.Track, error) {
	genres, err := s.catalog.AvailableGenreSeeds(ctx)
	if err != nil {
		return nil, err
	}
	seeds := s.pickSeeds(genres)
	if len(seeds) == 0 {
		return nil, nil
	}
	return s.catalog.Recommendations(ctx, seeds)
}

// pickSeeds chooses up to SeedCount genres at random.
func (s *Service) pickSeeds(genres []string) []string {
	seeds := append([]string(nil), genres...)
	s.shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
	if len(seeds) > SeedCount {
		seeds = seeds[:SeedCount]
	}
	return seeds
}

// Categories lists the browse categories.
func (s *Service) Categories(ctx context.Context) ([]types.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.log("categories").WithError(err).Error("Failed to get categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// CategoryPlaylists lists the playlists in a category.
func (s *Service) CategoryPlaylists(ctx context.Context, categoryID string) ([]types.Playlist, error) {
	playlists, err := s.catalog.CategoryPlaylists(ctx, categoryID)
	if err != nil {
		s.log("category_playlists").WithError(err).WithField("category_id", categoryID).Error("Failed to get category playlists")
		return nil, fmt.Errorf("failed to get playlists for category %s: %w", categoryID, err)
	}
	return playlists, nil
}

// Album loads an album with its tracks.
func (s *Service) Album(ctx context.Context, albumID string) (*types.AlbumDetails, error) {
	details, err := s.catalog.AlbumDetails(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to load album %s: %w", albumID, err)
	}
	return details, nil
}

// Playlist loads a playlist with its tracks.
func (s *Service) Playlist(ctx context.Context, playlistID string) (*types.PlaylistDetails, error) {
	details, err := s.catalog.PlaylistDetails(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist %s: %w", playlistID, err)
	}
	return details, nil
}
