package dto

import (
	"time"

	"forge-service/internal/core/services"
)

type CreateAddonRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Teaser      string     `json:"teaser" binding:"max=255"`
	Description string     `json:"description" binding:"max=50000"`
	LicenseID   *int64     `json:"license_id"`
	PublishedAt *time.Time `json:"published_at"`
}

func (r CreateAddonRequest) ToService() services.CreateAddonRequest {
	return services.CreateAddonRequest{
		Name:        r.Name,
		Teaser:      r.Teaser,
		Description: r.Description,
		LicenseID:   r.LicenseID,
		PublishedAt: r.PublishedAt,
	}
}

type UpdateAddonRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=255"`
	Teaser      *string    `json:"teaser" binding:"omitempty,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=50000"`
	LicenseID   *int64     `json:"license_id"`
	PublishedAt *time.Time `json:"published_at"`
	Disabled    *bool      `json:"disabled"`
}

func (r UpdateAddonRequest) Updates() map[string]interface{} {
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
	if r.LicenseID != nil {
		updates["license_id"] = *r.LicenseID
	}
	if r.PublishedAt != nil {
		updates["published_at"] = *r.PublishedAt
	}
	if r.Disabled != nil {
		updates["disabled"] = *r.Disabled
	}
	return updates
}

type CreateAddonVersionRequest struct {
	Version              string     `json:"version" binding:"required,max=50"`
	Description          string     `json:"description" binding:"max=50000"`
	Link                 string     `json:"link" binding:"required,url,max=2048"`
	ModVersionConstraint string     `json:"mod_version_constraint" binding:"max=255"`
	VirusTotalLink       string     `json:"virus_total_link" binding:"omitempty,url,max=2048"`
	PublishedAt          *time.Time `json:"published_at"`
}

func (r CreateAddonVersionRequest) ToService() services.CreateAddonVersionRequest {
	return services.CreateAddonVersionRequest{
		Version:              r.Version,
		Description:          r.Description,
		Link:                 r.Link,
		ModVersionConstraint: r.ModVersionConstraint,
		VirusTotalLink:       r.VirusTotalLink,
		PublishedAt:          r.PublishedAt,
	}
}

type UpdateAddonVersionRequest struct {
	Version              *string    `json:"version" binding:"omitempty,max=50"`
	Description          *string    `json:"description" binding:"omitempty,max=50000"`
	Link                 *string    `json:"link" binding:"omitempty,url,max=2048"`
	ModVersionConstraint *string    `json:"mod_version_constraint" binding:"omitempty,max=255"`
	VirusTotalLink       *string    `json:"virus_total_link" binding:"omitempty,url,max=2048"`
	PublishedAt          *time.Time `json:"published_at"`
	Disabled             *bool      `json:"disabled"`
}

func (r UpdateAddonVersionRequest) Updates() map[string]interface{} {
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
	if r.ModVersionConstraint != nil {
		updates["mod_version_constraint"] = *r.ModVersionConstraint
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
	return updates
}

type CreateSptVersionRequest struct {
	Version    string `json:"version" binding:"required,max=50"`
	Link       string `json:"link" binding:"omitempty,url,max=2048"`
	ColorClass string `json:"color_class" binding:"max=50"`
}
