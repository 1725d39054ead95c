package web

import (
	"time"

	"github.com/voicecast/voicecast/internal/models"
	"gorm.io/gorm"
)

// HistoryRow holds call-log data for display.
type HistoryRow struct {
	ToNumber  string
	Message   string
	CreatedAt time.Time
}

// UserHistory returns all calls placed by the given user, newest first.
func UserHistory(db *gorm.DB, email string) ([]HistoryRow, error) {
	var logs []models.CallLog
	if err := db.Where("user_email = ?", email).
		Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	rows := make([]HistoryRow, len(logs))
	for i, l := range logs {
		rows[i] = HistoryRow{
			ToNumber:  l.ToNumber,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		}
	}
	return rows, nil
}
