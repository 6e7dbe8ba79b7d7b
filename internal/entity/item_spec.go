package entity

import "github.com/google/uuid"

// TechnicalAttributes are the optional, domain-specific attributes shared by
// normalized item specs and catalog equipment.
type TechnicalAttributes struct {
	LensType        *string  `json:"lensType,omitempty" db:"lens_type"`
	PTZ             *bool    `json:"ptz,omitempty" db:"ptz"`
	Varifocal       *bool    `json:"varifocal,omitempty" db:"varifocal"`
	MinResolutionMP *float64 `json:"minResolutionMp,omitempty" db:"min_resolution_mp"`
	PoE             *bool    `json:"poe,omitempty" db:"poe"`
	IRRangeMeters   *float64 `json:"irRangeMeters,omitempty" db:"ir_range_m"`
	PowerDrawWatts  *float64 `json:"powerDrawWatts,omitempty" db:"power_draw_w"`
	PortCount       *int     `json:"portCount,omitempty" db:"port_count"`
	TransferSpeed   *string  `json:"transferSpeed,omitempty" db:"transfer_speed"`
	StorageTB       *float64 `json:"storageTb,omitempty" db:"storage_tb"`
}

// NormalizedItemSpec is the typed reading of one free-text item description.
// Stored 1:1 with its item; re-normalization replaces it.
type NormalizedItemSpec struct {
	ItemID     uuid.UUID `json:"itemId,omitempty" db:"item_id"`
	Category   string    `json:"category" db:"category"`
	Technology string    `json:"technology" db:"technology"`
	Format     string    `json:"format" db:"format"`
	TechnicalAttributes
	Observations string  `json:"observations" db:"observations"`
	Confidence   float64 `json:"confidence" db:"confidence"`
}
