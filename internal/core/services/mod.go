package services

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type ModService struct {
	repo ports.ModRepository
	bans ports.BanRepository
}

func NewModService(repo ports.ModRepository, bans ports.BanRepository) *ModService {
	return &ModService{repo: repo, bans: bans}
}

// CreateModRequest contains parameters for creating a mod
type CreateModRequest struct {
	Name              string
	Teaser            string
	Description       string
	Thumbnail         string
	LicenseID         *int64
	SourceCodeLink    string
	ContainsAIContent bool
	ContainsAds       bool
	PublishedAt       *time.Time
	AuthorIDs         []int64
}

func (s *ModService) Create(ctx context.Context, actor *domain.User, req CreateModRequest) (*domain.Mod, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidModName
	}

	now := time.Now()
	ownerID := actor.ID
	mod := &domain.Mod{
		OwnerID:           &ownerID,
		Name:              name,
		Slug:              generateSlug(name),
		Teaser:            req.Teaser,
		Description:       req.Description,
		Thumbnail:         req.Thumbnail,
		LicenseID:         req.LicenseID,
		SourceCodeLink:    req.SourceCodeLink,
		ContainsAIContent: req.ContainsAIContent,
		ContainsAds:       req.ContainsAds,
		PublishedAt:       req.PublishedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
		AuthorIDs:         withoutID(req.AuthorIDs, ownerID),
	}

	if err := s.repo.Create(ctx, mod); err != nil {
		return nil, err
	}

	if len(mod.AuthorIDs) > 0 {
		if err := s.repo.SetAuthors(ctx, mod.ID, mod.AuthorIDs); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{"mod_id": mod.ID, "owner_id": ownerID}).Info("mod created")
	return s.repo.GetByID(ctx, mod.ID)
}

// Get returns the mod when viewer may see it. Hidden mods are reported as
// not found so their existence does not leak.
func (s *ModService) Get(ctx context.Context, viewer *domain.User, id int64) (*domain.Mod, error) {
	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mod.DeletedAt != nil && !viewer.IsModerator() {
		return nil, domain.ErrModNotFound
	}
	if !mod.IsVisibleTo(viewer, time.Now()) {
		return nil, domain.ErrModNotFound
	}
	return mod, nil
}

func (s *ModService) List(ctx context.Context, viewer *domain.User, filter ports.ModListFilter) ([]*domain.Mod, int, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	if !viewer.IsModerator() {
		filter.IncludeHidden = false
		filter.IncludeDeleted = false
	}
	return s.repo.List(ctx, filter)
}

func (s *ModService) Update(ctx context.Context, actor *domain.User, id int64, updates map[string]interface{}) (*domain.Mod, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mod.DeletedAt != nil {
		return nil, domain.ErrModNotFound
	}
	if !mod.CanBeEditedBy(actor) {
		return nil, domain.ErrForbidden
	}

	if v, ok := updates["name"]; ok && v != nil {
		name := strings.TrimSpace(v.(string))
		if name == "" {
			return nil, domain.ErrInvalidModName
		}
		mod.Name = name
		mod.Slug = generateSlug(name)
	}
	if v, ok := updates["teaser"]; ok && v != nil {
		mod.Teaser = v.(string)
	}
	if v, ok := updates["description"]; ok && v != nil {
		mod.Description = v.(string)
	}
	if v, ok := updates["thumbnail"]; ok && v != nil {
		mod.Thumbnail = v.(string)
	}
	if v, ok := updates["license_id"]; ok && v != nil {
		licenseID := v.(int64)
		mod.LicenseID = &licenseID
	}
	if v, ok := updates["source_code_link"]; ok && v != nil {
		mod.SourceCodeLink = v.(string)
	}
	if v, ok := updates["contains_ai_content"]; ok && v != nil {
		mod.ContainsAIContent = v.(bool)
	}
	if v, ok := updates["contains_ads"]; ok && v != nil {
		mod.ContainsAds = v.(bool)
	}
	if v, ok := updates["published_at"]; ok && v != nil {
		publishedAt := v.(time.Time)
		mod.PublishedAt = &publishedAt
	}
	if v, ok := updates["disabled"]; ok && v != nil {
		mod.Disabled = v.(bool)
	}
	v, setAuthors := updates["author_ids"]
	setAuthors = setAuthors && v != nil
	if setAuthors {
		var ownerID int64
		if mod.OwnerID != nil {
			ownerID = *mod.OwnerID
		}
		mod.AuthorIDs = withoutID(v.([]int64), ownerID)
	}

	if err := s.repo.Update(ctx, mod); err != nil {
		return nil, err
	}
	if setAuthors {
		if err := s.repo.SetAuthors(ctx, mod.ID, mod.AuthorIDs); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, id)
}

func (s *ModService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return err
	}

	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mod.DeletedAt != nil {
		return domain.ErrModNotFound
	}
	if !mod.CanBeEditedBy(actor) {
		return domain.ErrForbidden
	}

	return s.repo.SoftDelete(ctx, id, time.Now())
}

func (s *ModService) Restore(ctx context.Context, actor *domain.User, id int64) (*domain.Mod, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, err
	}

	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mod.DeletedAt == nil {
		return nil, domain.ErrNotDeleted
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SetFeatured toggles the front page flag. Moderators only.
func (s *ModService) SetFeatured(ctx context.Context, actor *domain.User, id int64, featured bool) (*domain.Mod, error) {
	if err := ensureModerator(actor); err != nil {
		return nil, err
	}

	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mod.Featured = featured

	if err := s.repo.Update(ctx, mod); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func withoutID(ids []int64, exclude int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
