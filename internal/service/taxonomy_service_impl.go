package service

import (
	"context"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/taxonomy"
)

type taxonomyService struct {
	catalog *taxonomy.Catalog
}

func NewTaxonomyService(catalog *taxonomy.Catalog) TaxonomyService {
	return &taxonomyService{catalog: catalog}
}

func (s *taxonomyService) ResolveCategory(ctx context.Context, identifier string) (domain.CanonicalCategory, error) {
	code, err := s.catalog.Resolve(identifier)
	if err != nil {
		return domain.CanonicalCategory{}, err
	}
	cat, _ := s.catalog.Category(code)
	return cat, nil
}

func (s *taxonomyService) ListCategories(ctx context.Context) []domain.CanonicalCategory {
	codes := s.catalog.Codes()
	out := make([]domain.CanonicalCategory, 0, len(codes))
	for _, code := range codes {
		if cat, ok := s.catalog.Category(code); ok {
			out = append(out, cat)
		}
	}
	return out
}

func (s *taxonomyService) ListGroups(ctx context.Context) []string {
	return s.catalog.Groups()
}
