package domain

import "time"

// VersionParts holds the parsed components of a semantic version string.
type VersionParts struct {
	Major int64  `json:"version_major"`
	Minor int64  `json:"version_minor"`
	Patch int64  `json:"version_patch"`
	Label string `json:"version_labels"`
}

type ModVersion struct {
	VersionParts

	ID                   int64      `json:"id"`
	HubID                *int64     `json:"hub_id"`
	ModID                int64      `json:"mod_id"`
	Version              string     `json:"version"`
	Description          string     `json:"description"`
	Link                 string     `json:"link"`
	SptVersionConstraint string     `json:"spt_version_constraint"`
	VirusTotalLink       string     `json:"virus_total_link"`
	Downloads            int64      `json:"downloads"`
	Disabled             bool       `json:"disabled"`
	PublishedAt          *time.Time `json:"published_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	Dependencies []ModDependency `json:"dependencies"`

	// Computed fields
	SptVersions []string `json:"spt_versions,omitempty"`
}

func (v *ModVersion) IsPublished(t time.Time) bool {
	return !v.Disabled && v.PublishedAt != nil && !v.PublishedAt.After(t)
}

// ModDependency declares that a mod version needs some version of another mod.
type ModDependency struct {
	ID             int64  `json:"id"`
	ModVersionID   int64  `json:"mod_version_id"`
	DependentModID int64  `json:"dependent_mod_id"`
	Constraint     string `json:"constraint"`

	// Computed fields
	ResolvedVersionIDs []int64 `json:"resolved_version_ids,omitempty"`
	RecommendedID      *int64  `json:"recommended_version_id,omitempty"`
}

// ResolvedDependency is one persisted match of a dependency constraint.
type ResolvedDependency struct {
	ModVersionID         int64
	DependencyID         int64
	ResolvedModVersionID int64
}

type SptVersion struct {
	VersionParts

	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Link       string    `json:"link"`
	ColorClass string    `json:"color_class"`
	ModCount   int       `json:"mod_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPrerelease reports whether the SPT version carries a pre-release label.
func (s *SptVersion) IsPrerelease() bool {
	return s.Label != ""
}
