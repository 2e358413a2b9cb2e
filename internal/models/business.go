package models

import (
	"time"
)

// Business represents a tenant on whose behalf events are hosted and
// Instagram posts are imported.
type Business struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	ContactEmail    string    `json:"contact_email"`
	Website         string    `json:"website,omitempty"`
	OwnerID         string    `json:"owner_id"`
	InstagramHandle string    `json:"instagram_handle,omitempty"`
	DefaultCategory string    `json:"default_category,omitempty"`
	Features        []string  `json:"features"`
	IsVerified      bool      `json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FeaturePremiumCustomization gates the Instagram import pipeline.
const FeaturePremiumCustomization = "premium_customization"

// HasFeature reports whether the business's subscription includes the named
// feature.
func (b *Business) HasFeature(feature string) bool {
	for _, f := range b.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Venue is a saved address belonging to a business. The most recently saved
// venue is used as the location fallback for imported drafts.
type Venue struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}
