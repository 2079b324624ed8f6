package domain

import "time"

// Addon extends a mod. A detached addon keeps existing after its parent mod
// link has been cut by a moderator.
type Addon struct {
	ID          int64      `json:"id"`
	ModID       *int64     `json:"mod_id"`
	OwnerID     *int64     `json:"owner_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Teaser      string     `json:"teaser"`
	Description string     `json:"description"`
	LicenseID   *int64     `json:"license_id"`
	Downloads   int64      `json:"downloads"`
	Disabled    bool       `json:"disabled"`
	PublishedAt *time.Time `json:"published_at"`
	DetachedAt  *time.Time `json:"detached_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`

	AuthorIDs []int64 `json:"author_ids"`

	// Computed fields
	VersionCount int `json:"version_count"`
}

func (a *Addon) IsPublished(t time.Time) bool {
	return !a.Disabled && a.DeletedAt == nil && a.PublishedAt != nil && !a.PublishedAt.After(t)
}

func (a *Addon) IsDetached() bool {
	return a.DetachedAt != nil
}

func (a *Addon) IsVisibleTo(viewer *User, t time.Time) bool {
	if a.CanBeEditedBy(viewer) {
		return true
	}
	return a.IsPublished(t) && a.VersionCount > 0
}

func (a *Addon) CanBeEditedBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsModerator() || a.IsAuthoredBy(u.ID)
}

// IsAuthoredBy is true for the owner and any listed author.
func (a *Addon) IsAuthoredBy(userID int64) bool {
	if a.OwnerID != nil && *a.OwnerID == userID {
		return true
	}
	for _, id := range a.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type AddonVersion struct {
	VersionParts

	ID                   int64      `json:"id"`
	AddonID              int64      `json:"addon_id"`
	Version              string     `json:"version"`
	Description          string     `json:"description"`
	Link                 string     `json:"link"`
	ModVersionConstraint string     `json:"mod_version_constraint"`
	VirusTotalLink       string     `json:"virus_total_link"`
	Downloads            int64      `json:"downloads"`
	Disabled             bool       `json:"disabled"`
	PublishedAt          *time.Time `json:"published_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Computed fields
	CompatibleModVersionIDs []int64 `json:"compatible_mod_version_ids,omitempty"`
}

func (v *AddonVersion) IsPublished(t time.Time) bool {
	return !v.Disabled && v.PublishedAt != nil && !v.PublishedAt.After(t)
}
