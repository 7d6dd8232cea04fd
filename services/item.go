package services

import "time"

// Item is the single record type persisted by the service.
type Item struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewItem carries the caller-supplied fields of an item to create.
type NewItem struct {
	Name        string
	Description *string
}

// DBHealth is the result of a store health probe.
type DBHealth struct {
	Time    time.Time
	Version string
}
