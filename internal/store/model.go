package store

import "time"

// BaseModel provides the common columns every persistent entity carries.
// Embed it into model structs.
type BaseModel struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Internal repository state, never persisted.
	isNewRecord bool
}

// GetID returns the primary key value.
func (b *BaseModel) GetID() int64 { return b.ID }

// SetID sets the primary key value.
func (b *BaseModel) SetID(id int64) { b.ID = id }

// IsNewRecord reports whether the record has not been persisted yet.
func (b *BaseModel) IsNewRecord() bool { return b.isNewRecord }

// SetNewRecordFlag sets the internal new-record flag.
func (b *BaseModel) SetNewRecordFlag(isNew bool) { b.isNewRecord = isNew }

// Tabler lets a model override the table name derived from its type name.
type Tabler interface {
	TableName() string
}
