package servicepackage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/pkg/cache"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

var (
	activeKey   = cache.Key("service_packages", "active")
	defaultsKey = cache.Key("service_packages", "system_defaults")
)

type Service struct {
	tx       repository.Transactor
	packages repository.ServicePackageRepository
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
}

// NewService caches package listings in c for ttl; c may be nil.
func NewService(tx repository.Transactor, packages repository.ServicePackageRepository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		tx:       tx,
		packages: packages,
		cache:    c,
		ttl:      ttl,
		now:      time.Now,
	}
}

// List returns active packages ordered by level then price.
func (s *Service) List(ctx context.Context) ([]*model.ServicePackage, error) {
	return s.cached(ctx, activeKey, func(ctx context.Context) ([]*model.ServicePackage, error) {
		return s.packages.List(ctx, true)
	})
}

// SystemDefaults returns the seeded tier catalog.
func (s *Service) SystemDefaults(ctx context.Context) ([]*model.ServicePackage, error) {
	return s.cached(ctx, defaultsKey, s.packages.ListSystemDefaults)
}

func (s *Service) cached(ctx context.Context, key string, load func(context.Context) ([]*model.ServicePackage, error)) ([]*model.ServicePackage, error) {
	var pkgs []*model.ServicePackage
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &pkgs); err == nil && ok {
			return pkgs, nil
		}
	}

	pkgs, err := load(ctx)
	if err != nil {
		return nil, apperrors.Wrap("list service packages", err)
	}
	if pkgs == nil {
		pkgs = []*model.ServicePackage{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, pkgs, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return pkgs, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error) {
	pkg, err := s.packages.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("load service package", err)
	}
	return pkg, nil
}

func (s *Service) Create(ctx context.Context, req *model.ServicePackageRequest) (*model.ServicePackage, error) {
	now := s.now()
	pkg := &model.ServicePackage{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	req.Apply(pkg)

	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, apperrors.Wrap("create service package", err)
	}
	s.invalidate(ctx)
	return pkg, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.ServicePackageRequest) (*model.ServicePackage, error) {
	pkg, err := s.packages.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("load service package", err)
	}
	req.Apply(pkg)
	pkg.UpdatedAt = s.now()

	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, apperrors.Wrap("update service package", err)
	}
	s.invalidate(ctx)
	return pkg, nil
}

// Seed upserts the tier catalog by package level and returns the number
// of tiers written.
func (s *Service) Seed(ctx context.Context) (int, error) {
	now := s.now()
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, t := range catalog {
			pkg := &model.ServicePackage{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
			t.request().Apply(pkg)
			if err := s.packages.UpsertByLevel(ctx, pkg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap("seed service packages", err)
	}
	s.invalidate(ctx)
	return len(catalog), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, activeKey, defaultsKey); err != nil {
			log.Warn().Err(err).Strs("keys", []string{activeKey, defaultsKey}).Msg("cache invalidation failed")
		}
	}
}
