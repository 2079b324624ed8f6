package dto

import (
	"time"

	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
)

type CreateModRequest struct {
	Name              string     `json:"name" binding:"required,max=255"`
	Teaser            string     `json:"teaser" binding:"max=255"`
	Description       string     `json:"description" binding:"max=50000"`
	Thumbnail         string     `json:"thumbnail" binding:"max=2048"`
	LicenseID         *int64     `json:"license_id"`
	SourceCodeLink    string     `json:"source_code_link" binding:"omitempty,url,max=2048"`
	ContainsAIContent bool       `json:"contains_ai_content"`
	ContainsAds       bool       `json:"contains_ads"`
	PublishedAt       *time.Time `json:"published_at"`
	AuthorIDs         []int64    `json:"author_ids" binding:"max=10"`
}

func (r CreateModRequest) ToService() services.CreateModRequest {
	return services.CreateModRequest{
		Name:              r.Name,
		Teaser:            r.Teaser,
		Description:       r.Description,
		Thumbnail:         r.Thumbnail,
		LicenseID:         r.LicenseID,
		SourceCodeLink:    r.SourceCodeLink,
		ContainsAIContent: r.ContainsAIContent,
		ContainsAds:       r.ContainsAds,
		PublishedAt:       r.PublishedAt,
		AuthorIDs:         r.AuthorIDs,
	}
}

type UpdateModRequest struct {
	Name              *string    `json:"name" binding:"omitempty,max=255"`
	Teaser            *string    `json:"teaser" binding:"omitempty,max=255"`
	Description       *string    `json:"description" binding:"omitempty,max=50000"`
	Thumbnail         *string    `json:"thumbnail" binding:"omitempty,max=2048"`
	LicenseID         *int64     `json:"license_id"`
	SourceCodeLink    *string    `json:"source_code_link" binding:"omitempty,url,max=2048"`
	ContainsAIContent *bool      `json:"contains_ai_content"`
	ContainsAds       *bool      `json:"contains_ads"`
	PublishedAt       *time.Time `json:"published_at"`
	Disabled          *bool      `json:"disabled"`
	AuthorIDs         []int64    `json:"author_ids" binding:"omitempty,max=10"`
}

// Updates returns only the fields present in the request.
func (r UpdateModRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Name != nil {
		updates["name"] = *r.Name
	}
	if r.Teaser != nil {
		updates["teaser"] = *r.Teaser
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Thumbnail != nil {
		updates["thumbnail"] = *r.Thumbnail
	}
	if r.LicenseID != nil {
		updates["license_id"] = *r.LicenseID
	}
	if r.SourceCodeLink != nil {
		updates["source_code_link"] = *r.SourceCodeLink
	}
	if r.ContainsAIContent != nil {
		updates["contains_ai_content"] = *r.ContainsAIContent
	}
	if r.ContainsAds != nil {
		updates["contains_ads"] = *r.ContainsAds
	}
	if r.PublishedAt != nil {
		updates["published_at"] = *r.PublishedAt
	}
	if r.Disabled != nil {
		updates["disabled"] = *r.Disabled
	}
	if r.AuthorIDs != nil {
		updates["author_ids"] = r.AuthorIDs
	}
	return updates
}

type FeatureRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

type ModResponse struct {
	ID                int64               `json:"id"`
	HubID             *int64              `json:"hub_id,omitempty"`
	OwnerID           *int64              `json:"owner_id"`
	OwnerName         string              `json:"owner_name,omitempty"`
	Name              string              `json:"name"`
	Slug              string              `json:"slug"`
	Teaser            string              `json:"teaser"`
	Description       string              `json:"description"`
	Thumbnail         string              `json:"thumbnail"`
	LicenseID         *int64              `json:"license_id"`
	LicenseName       string              `json:"license_name,omitempty"`
	SourceCodeLink    string              `json:"source_code_link"`
	Featured          bool                `json:"featured"`
	ContainsAIContent bool                `json:"contains_ai_content"`
	ContainsAds       bool                `json:"contains_ads"`
	Disabled          bool                `json:"disabled"`
	Downloads         int64               `json:"downloads"`
	AuthorIDs         []int64             `json:"author_ids"`
	VersionCount      int                 `json:"version_count"`
	LatestVersion     *ModVersionResponse `json:"latest_version,omitempty"`
	PublishedAt       *string             `json:"published_at"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
	DeletedAt         *string             `json:"deleted_at,omitempty"`
}

func ToModResponse(m *domain.Mod) ModResponse {
	authors := m.AuthorIDs
	if authors == nil {
		authors = []int64{}
	}
	resp := ModResponse{
		ID:                m.ID,
		HubID:             m.HubID,
		OwnerID:           m.OwnerID,
		OwnerName:         m.OwnerName,
		Name:              m.Name,
		Slug:              m.Slug,
		Teaser:            m.Teaser,
		Description:       m.Description,
		Thumbnail:         m.Thumbnail,
		LicenseID:         m.LicenseID,
		LicenseName:       m.LicenseName,
		SourceCodeLink:    m.SourceCodeLink,
		Featured:          m.Featured,
		ContainsAIContent: m.ContainsAIContent,
		ContainsAds:       m.ContainsAds,
		Disabled:          m.Disabled,
		Downloads:         m.Downloads,
		AuthorIDs:         authors,
		VersionCount:      m.VersionCount,
		PublishedAt:       formatTime(m.PublishedAt),
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         m.UpdatedAt.Format(time.RFC3339),
		DeletedAt:         formatTime(m.DeletedAt),
	}
	if m.LatestVersion != nil {
		v := ToModVersionResponse(m.LatestVersion)
		resp.LatestVersion = &v
	}
	return resp
}

type DependencyRequest struct {
	ModID      int64  `json:"mod_id" binding:"required,gt=0"`
	Constraint string `json:"constraint" binding:"required,max=255"`
}

type CreateModVersionRequest struct {
	Version              string              `json:"version" binding:"required,max=50"`
	Description          string              `json:"description" binding:"max=50000"`
	Link                 string              `json:"link" binding:"required,url,max=2048"`
	SptVersionConstraint string              `json:"spt_version_constraint" binding:"required,max=255"`
	VirusTotalLink       string              `json:"virus_total_link" binding:"omitempty,url,max=2048"`
	PublishedAt          *time.Time          `json:"published_at"`
	Dependencies         []DependencyRequest `json:"dependencies" binding:"omitempty,dive"`
}

func (r CreateModVersionRequest) ToService() services.CreateModVersionRequest {
	return services.CreateModVersionRequest{
		Version:              r.Version,
		Description:          r.Description,
		Link:                 r.Link,
		SptVersionConstraint: r.SptVersionConstraint,
		VirusTotalLink:       r.VirusTotalLink,
		PublishedAt:          r.PublishedAt,
		Dependencies:         toDependencyInputs(r.Dependencies),
	}
}

type UpdateModVersionRequest struct {
	Version              *string             `json:"version" binding:"omitempty,max=50"`
	Description          *string             `json:"description" binding:"omitempty,max=50000"`
	Link                 *string             `json:"link" binding:"omitempty,url,max=2048"`
	SptVersionConstraint *string             `json:"spt_version_constraint" binding:"omitempty,max=255"`
	VirusTotalLink       *string             `json:"virus_total_link" binding:"omitempty,url,max=2048"`
	PublishedAt          *time.Time          `json:"published_at"`
	Disabled             *bool               `json:"disabled"`
	Dependencies         []DependencyRequest `json:"dependencies" binding:"omitempty,dive"`
}

func (r UpdateModVersionRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Version != nil {
		updates["version"] = *r.Version
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Link != nil {
		updates["link"] = *r.Link
	}
	if r.SptVersionConstraint != nil {
		updates["spt_version_constraint"] = *r.SptVersionConstraint
	}
	if r.VirusTotalLink != nil {
		updates["virus_total_link"] = *r.VirusTotalLink
	}
	if r.PublishedAt != nil {
		updates["published_at"] = *r.PublishedAt
	}
	if r.Disabled != nil {
		updates["disabled"] = *r.Disabled
	}
	if r.Dependencies != nil {
		updates["dependencies"] = toDependencyInputs(r.Dependencies)
	}
	return updates
}

func toDependencyInputs(deps []DependencyRequest) []services.DependencyInput {
	inputs := make([]services.DependencyInput, 0, len(deps))
	for _, d := range deps {
		inputs = append(inputs, services.DependencyInput{ModID: d.ModID, Constraint: d.Constraint})
	}
	return inputs
}

type DependencyResponse struct {
	ID                   int64   `json:"id"`
	ModID                int64   `json:"mod_id"`
	Constraint           string  `json:"constraint"`
	ResolvedVersionIDs   []int64 `json:"resolved_version_ids"`
	RecommendedVersionID *int64  `json:"recommended_version_id"`
}

type ModVersionResponse struct {
	ID                   int64                `json:"id"`
	ModID                int64                `json:"mod_id"`
	Version              string               `json:"version"`
	VersionMajor         int64                `json:"version_major"`
	VersionMinor         int64                `json:"version_minor"`
	VersionPatch         int64                `json:"version_patch"`
	VersionLabels        string               `json:"version_labels"`
	Description          string               `json:"description"`
	Link                 string               `json:"link"`
	SptVersionConstraint string               `json:"spt_version_constraint"`
	SptVersions          []string             `json:"spt_versions"`
	VirusTotalLink       string               `json:"virus_total_link"`
	Downloads            int64                `json:"downloads"`
	Disabled             bool                 `json:"disabled"`
	Dependencies         []DependencyResponse `json:"dependencies"`
	PublishedAt          *string              `json:"published_at"`
	CreatedAt            string               `json:"created_at"`
	UpdatedAt            string               `json:"updated_at"`
}

func ToModVersionResponse(v *domain.ModVersion) ModVersionResponse {
	spt := v.SptVersions
	if spt == nil {
		spt = []string{}
	}
	deps := make([]DependencyResponse, 0, len(v.Dependencies))
	for _, d := range v.Dependencies {
		resolved := d.ResolvedVersionIDs
		if resolved == nil {
			resolved = []int64{}
		}
		deps = append(deps, DependencyResponse{
			ID:                   d.ID,
			ModID:                d.DependentModID,
			Constraint:           d.Constraint,
			ResolvedVersionIDs:   resolved,
			RecommendedVersionID: d.RecommendedID,
		})
	}
	return ModVersionResponse{
		ID:                   v.ID,
		ModID:                v.ModID,
		Version:              v.Version,
		VersionMajor:         v.Major,
		VersionMinor:         v.Minor,
		VersionPatch:         v.Patch,
		VersionLabels:        v.Label,
		Description:          v.Description,
		Link:                 v.Link,
		SptVersionConstraint: v.SptVersionConstraint,
		SptVersions:          spt,
		VirusTotalLink:       v.VirusTotalLink,
		Downloads:            v.Downloads,
		Disabled:             v.Disabled,
		Dependencies:         deps,
		PublishedAt:          formatTime(v.PublishedAt),
		CreatedAt:            v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            v.UpdatedAt.Format(time.RFC3339),
	}
}

type DownloadResponse struct {
	Link      string `json:"link"`
	Downloads int64  `json:"downloads"`
	Counted   bool   `json:"counted"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
