package services

import (
	"context"
	"strings"
	"time"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type AddonService struct {
	repo    ports.AddonRepository
	modRepo ports.ModRepository
	bans    ports.BanRepository
}

func NewAddonService(repo ports.AddonRepository, modRepo ports.ModRepository, bans ports.BanRepository) *AddonService {
	return &AddonService{repo: repo, modRepo: modRepo, bans: bans}
}

type CreateAddonRequest struct {
	Name        string
	Teaser      string
	Description string
	LicenseID   *int64
	PublishedAt *time.Time
}

// Create attaches a new addon to a mod. Anyone active may publish an addon
// for a visible mod.
func (s *AddonService) Create(ctx context.Context, actor *domain.User, modID int64, req CreateAddonRequest) (*domain.Addon, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	mod, err := s.modRepo.GetByID(ctx, modID)
	if err != nil {
		return nil, err
	}
	if mod.DeletedAt != nil || !mod.IsVisibleTo(actor, time.Now()) {
		return nil, domain.ErrModNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidAddonName
	}

	now := time.Now()
	ownerID := actor.ID
	addon := &domain.Addon{
		ModID:       &mod.ID,
		OwnerID:     &ownerID,
		Name:        name,
		Slug:        generateSlug(name),
		Teaser:      req.Teaser,
		Description: req.Description,
		LicenseID:   req.LicenseID,
		PublishedAt: req.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, addon); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, addon.ID)
}

func (s *AddonService) Get(ctx context.Context, viewer *domain.User, id int64) (*domain.Addon, error) {
	addon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if addon.DeletedAt != nil && !viewer.IsModerator() {
		return nil, domain.ErrAddonNotFound
	}
	if !addon.IsVisibleTo(viewer, time.Now()) {
		return nil, domain.ErrAddonNotFound
	}
	return addon, nil
}

func (s *AddonService) ListByMod(ctx context.Context, viewer *domain.User, modID int64, limit, offset int) ([]*domain.Addon, int, error) {
	if _, err := s.modRepo.GetByID(ctx, modID); err != nil {
		return nil, 0, err
	}

	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, ports.AddonListFilter{
		ModID:         modID,
		IncludeHidden: viewer.IsModerator(),
		Limit:         limit,
		Offset:        offset,
	})
}

func (s *AddonService) Update(ctx context.Context, actor *domain.User, id int64, updates map[string]interface{}) (*domain.Addon, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	addon, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if v, ok := updates["name"]; ok && v != nil {
		name := strings.TrimSpace(v.(string))
		if name == "" {
			return nil, domain.ErrInvalidAddonName
		}
		addon.Name = name
		addon.Slug = generateSlug(name)
	}
	if v, ok := updates["teaser"]; ok && v != nil {
		addon.Teaser = v.(string)
	}
	if v, ok := updates["description"]; ok && v != nil {
		addon.Description = v.(string)
	}
	if v, ok := updates["license_id"]; ok && v != nil {
		licenseID := v.(int64)
		addon.LicenseID = &licenseID
	}
	if v, ok := updates["published_at"]; ok && v != nil {
		publishedAt := v.(time.Time)
		addon.PublishedAt = &publishedAt
	}
	if v, ok := updates["disabled"]; ok && v != nil {
		addon.Disabled = v.(bool)
	}

	if err := s.repo.Update(ctx, addon); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AddonService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return err
	}
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, time.Now())
}

// Detach cuts the link between an addon and its mod. Allowed for moderators
// and for the owner of the parent mod.
func (s *AddonService) Detach(ctx context.Context, actor *domain.User, id int64) (*domain.Addon, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	addon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if addon.DeletedAt != nil {
		return nil, domain.ErrAddonNotFound
	}
	if addon.IsDetached() {
		return nil, domain.ErrAddonAlreadyDetached
	}

	if !actor.IsModerator() {
		if addon.ModID == nil {
			return nil, domain.ErrForbidden
		}
		mod, err := s.modRepo.GetByID(ctx, *addon.ModID)
		if err != nil {
			return nil, err
		}
		if !mod.CanBeEditedBy(actor) {
			return nil, domain.ErrForbidden
		}
	}

	now := time.Now()
	addon.DetachedAt = &now
	if err := s.repo.Update(ctx, addon); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AddonService) editable(ctx context.Context, actor *domain.User, id int64) (*domain.Addon, error) {
	addon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if addon.DeletedAt != nil {
		return nil, domain.ErrAddonNotFound
	}
	if !addon.CanBeEditedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return addon, nil
}
