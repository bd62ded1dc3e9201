// Package entity defines the domain models for the instruments feature.
package entity

import "time"

// Instrument represents a tradable security in the local catalog.
// The whole instrument set is replaced on every catalog refresh, so rows
// always reflect the most recent provider listing in full.
type Instrument struct {
	Code      string    `gorm:"primaryKey;size:20"`
	Name      string    `gorm:"size:255;not null"`
	Industry  *string   `gorm:"size:100"`
	Area      *string   `gorm:"size:100"`
	Market    *string   `gorm:"size:20"`
	ListDate  *string   `gorm:"size:10"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table used for the instrument catalog.
func (Instrument) TableName() string {
	return "instruments"
}
