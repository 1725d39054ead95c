package models

import "time"

// CallLog records one placed outbound call. Rows are insert-only: nothing in
// the application ever updates or deletes them.
type CallLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserEmail string `gorm:"size:120;not null;index"`
	ToNumber  string `gorm:"size:20;not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
