// Package entity defines passive storage models kept alongside the market data.
// Nothing in the synchronizer reads these tables; they exist for downstream
// tooling that trains models on the local store and collects operator feedback.
package entity

import "time"

// TrainingRecord stores one model-training outcome.
type TrainingRecord struct {
	ID               uint      `gorm:"primaryKey"`
	ModelName        string    `gorm:"size:100;not null"`
	TrainingDate     time.Time `gorm:"not null"`
	Metrics          string    `gorm:"type:text"`
	Parameters       string    `gorm:"type:text"`
	PerformanceScore float64
}

// TableName returns the table used for training records.
func (TrainingRecord) TableName() string {
	return "model_training_records"
}

// Feedback stores one piece of free-text operator feedback.
type Feedback struct {
	ID           uint      `gorm:"primaryKey"`
	FeedbackType string    `gorm:"size:50;not null"`
	Content      string    `gorm:"type:text"`
	RelatedStock *string   `gorm:"size:20"`
	Rating       *int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table used for feedback rows.
func (Feedback) TableName() string {
	return "user_feedback"
}
