package database

import (
	"time"

	"gorm.io/datatypes"
)

// ImageDocument is the stored form of an image record. Answers holds a JSON
// array of human guesses; it is append-only and decoded/validated at the
// DocumentStore boundary. Version backs optimistic concurrency on saves.
type ImageDocument struct {
	Id           uint           `gorm:"primaryKey;autoIncrement"`
	FileName     string         `gorm:"not null"`
	Answers      datatypes.JSON `gorm:"not null"`
	Version      int            `gorm:"not null;default:0"`
	CreationTime time.Time
}
