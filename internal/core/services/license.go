package services

import (
	"context"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type LicenseService struct {
	repo ports.LicenseRepository
}

func NewLicenseService(repo ports.LicenseRepository) *LicenseService {
	return &LicenseService{repo: repo}
}

func (s *LicenseService) List(ctx context.Context) ([]*domain.License, error) {
	return s.repo.List(ctx)
}

func (s *LicenseService) Get(ctx context.Context, id int64) (*domain.License, error) {
	return s.repo.GetByID(ctx, id)
}
