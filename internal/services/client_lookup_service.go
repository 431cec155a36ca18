package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"
	"github.com/FelipeCgrillo/liquidapp/internal/rut"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type ClientFinder interface {
	GetByRut(ctx context.Context, rut string) (*models.Client, error)
}

// ClientLookupService resolves insured clients by RUT. Hits are cached for a
// short TTL, misses are not.
type ClientLookupService struct {
	clients ClientFinder
	cache   *expirable.LRU[string, *models.Client]
}

func NewClientLookupService(clients ClientFinder, cacheSize int, ttl time.Duration) *ClientLookupService {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	return &ClientLookupService{
		clients: clients,
		cache:   expirable.NewLRU[string, *models.Client](cacheSize, nil, ttl),
	}
}

func (s *ClientLookupService) FindByRut(ctx context.Context, raw string) (*models.Client, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: RUT requerido", ErrValidation)
	}
	if !rut.Validate(raw) {
		return nil, fmt.Errorf("%w: RUT inválido", ErrValidation)
	}
	normalized, err := rut.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: RUT inválido", ErrValidation)
	}

	if client, ok := s.cache.Get(normalized); ok {
		return client, nil
	}

	client, err := s.clients.GetByRut(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: cliente %s", ErrNotFound, normalized)
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	s.cache.Add(normalized, client)
	return client, nil
}
