package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/calyxa/galerie/cache"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/accounts"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	exhibitionrepo "github.com/calyxa/galerie/database/repo/exhibitions"
	"github.com/calyxa/galerie/internal/notify"
	"golang.org/x/sync/errgroup"
)

const statsCacheKey = "dashboard:stats"
const statsCacheTTL = time.Minute

// Stats is the aggregate counters shown on the admin dashboard.
type Stats struct {
	Users            int64 `json:"users"`
	Artworks         int64 `json:"artworks"`
	PendingArtworks  int64 `json:"pending_artworks"`
	ApprovedArtworks int64 `json:"approved_artworks"`
	RejectedArtworks int64 `json:"rejected_artworks"`
	Exhibitions      int64 `json:"exhibitions"`
	OpenConnections  int   `json:"open_connections"`
	GeneratedAt      int64 `json:"generated_at"`
}

// Service aggregates gallery-wide statistics for administrators.
type Service struct {
	accountsRepo    *accounts.Repository
	artworksRepo    *artworkrepo.Repository
	exhibitionsRepo *exhibitionrepo.Repository
	hub             *notify.Hub
	cacheProvider   cache.Provider
}

// NewService creates a dashboard service.
func NewService(
	accountsRepo *accounts.Repository,
	artworksRepo *artworkrepo.Repository,
	exhibitionsRepo *exhibitionrepo.Repository,
	hub *notify.Hub,
	cacheProvider cache.Provider,
) *Service {
	return &Service{
		accountsRepo:    accountsRepo,
		artworksRepo:    artworksRepo,
		exhibitionsRepo: exhibitionsRepo,
		hub:             hub,
		cacheProvider:   cacheProvider,
	}
}

// GetStats returns the dashboard counters, served from cache when fresh.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if s.cacheProvider != nil {
		var cached Stats
		if err := s.cacheProvider.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}
	return s.collect(ctx)
}

// RefreshCache recomputes the counters and overwrites the cache entry.
func (s *Service) RefreshCache(ctx context.Context) error {
	_, err := s.collect(ctx)
	return err
}

func (s *Service) collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		GeneratedAt: time.Now().Unix(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Users, err = s.accountsRepo.CountUsers()
		return err
	})
	g.Go(func() error {
		var err error
		stats.Artworks, err = s.artworksRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PendingArtworks, err = s.artworksRepo.CountByStatus(ctx, models.ArtworkStatusPending)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ApprovedArtworks, err = s.artworksRepo.CountByStatus(ctx, models.ArtworkStatusApproved)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RejectedArtworks, err = s.artworksRepo.CountByStatus(ctx, models.ArtworkStatusRejected)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Exhibitions, err = s.exhibitionsRepo.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.hub != nil {
		stats.OpenConnections = s.hub.ConnectionCount()
	}

	if s.cacheProvider != nil {
		if err := s.cacheProvider.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("Failed to cache dashboard stats: %v", err)
		}
	}

	return stats, nil
}
