package domain

import "time"

type License struct {
	ID    int64  `json:"id"`
	HubID *int64 `json:"hub_id"`
	Name  string `json:"name"`
	Link  string `json:"link"`
}

// Mod is a top-level package published on the Forge. Versions carry the
// downloadable releases.
type Mod struct {
	ID                int64      `json:"id"`
	HubID             *int64     `json:"hub_id"`
	OwnerID           *int64     `json:"owner_id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Teaser            string     `json:"teaser"`
	Description       string     `json:"description"`
	Thumbnail         string     `json:"thumbnail"`
	LicenseID         *int64     `json:"license_id"`
	SourceCodeLink    string     `json:"source_code_link"`
	Featured          bool       `json:"featured"`
	ContainsAIContent bool       `json:"contains_ai_content"`
	ContainsAds       bool       `json:"contains_ads"`
	Disabled          bool       `json:"disabled"`
	PublishedAt       *time.Time `json:"published_at"`
	Downloads         int64      `json:"downloads"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at"`

	AuthorIDs []int64 `json:"author_ids"`

	// Computed fields (populated by repository)
	OwnerName     string      `json:"owner_name,omitempty"`
	LicenseName   string      `json:"license_name,omitempty"`
	VersionCount  int         `json:"version_count"`
	LatestVersion *ModVersion `json:"latest_version,omitempty"`
}

// IsPublished reports whether the mod itself passes publication gating at t.
// It does not look at the versions.
func (m *Mod) IsPublished(t time.Time) bool {
	return !m.Disabled && m.DeletedAt == nil && m.PublishedAt != nil && !m.PublishedAt.After(t)
}

// IsVisibleTo reports whether the mod can be shown to viewer (nil for guests).
func (m *Mod) IsVisibleTo(viewer *User, t time.Time) bool {
	if m.CanBeEditedBy(viewer) {
		return true
	}
	return m.IsPublished(t) && m.VersionCount > 0
}

// CanBeEditedBy is true for the owner, any listed author and moderators.
func (m *Mod) CanBeEditedBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsModerator() || m.IsAuthoredBy(u.ID)
}

// IsAuthoredBy is true for the owner and any listed author.
func (m *Mod) IsAuthoredBy(userID int64) bool {
	if m.OwnerID != nil && *m.OwnerID == userID {
		return true
	}
	for _, id := range m.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
