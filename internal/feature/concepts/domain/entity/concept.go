// Package entity defines the domain models for the concepts feature.
package entity

// ConceptTag associates an instrument with a concept board name.
// (Code, Concept) is unique; tags accumulate across fetches and are
// never deleted by the synchronizer.
type ConceptTag struct {
	Code    string `gorm:"primaryKey;size:20"`
	Concept string `gorm:"primaryKey;size:100"`
}

// TableName returns the table used for concept tags.
func (ConceptTag) TableName() string {
	return "concepts"
}
