package model

import "github.com/google/uuid"

type Locality struct {
	BaseModel
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

// Neighborhood names are unique within their locality.
type Neighborhood struct {
	BaseModel
	Name       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_neighborhood_locality_name" json:"name"`
	LocalityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_neighborhood_locality_name" json:"locality_id"`
	Locality   *Locality `gorm:"constraint:OnDelete:RESTRICT" json:"locality,omitempty"`
}

type Address struct {
	BaseModel
	Details        string        `gorm:"type:varchar(60);not null" json:"details"`
	NeighborhoodID uuid.UUID     `gorm:"type:uuid;not null;index" json:"neighborhood_id"`
	Neighborhood   *Neighborhood `gorm:"constraint:OnDelete:RESTRICT" json:"neighborhood,omitempty"`
}
