package models

import "time"

// PublishCursorModel tracks the highest event sequence number a dispatcher
// has published. One row per dispatcher name; advancing the cursor after
// publish gives at-least-once delivery across restarts.
type PublishCursorModel struct {
	Name          string    `gorm:"type:varchar(100);primaryKey"`
	LastSequence  int64     `gorm:"not null;default:0"`
	LastPublished time.Time `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (PublishCursorModel) TableName() string {
	return "publish_cursors"
}
