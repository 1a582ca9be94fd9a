package database

import (
	"daily-shoutout/internal/types"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// InsertAnnouncement records that a shoutout was posted to a chat
func InsertAnnouncement(date string, chatID int64, name string) error {
	query := `
	INSERT OR IGNORE INTO announcements (date, chat_id, name)
	VALUES (?, ?, ?);`

	_, err := DB.Exec(query, date, chatID, name)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}

	log.Debugf("Announcement inserted: Date: %s, ChatID: %d, Name: %s", date, chatID, name)
	return nil
}

// HasAnnouncement reports whether the chat already got the shoutout for date
func HasAnnouncement(date string, chatID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM announcements WHERE date = ? AND chat_id = ?;`
	if err := DB.QueryRow(query, date, chatID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query announcements for %s: %w", date, err)
	}
	return count > 0, nil
}

// GetAnnouncementsByChatID fetches the announcement history of a chat, newest first
func GetAnnouncementsByChatID(chatID int64, limit int) ([]types.Announcement, error) {
	query := `SELECT id, date, chat_id, name, created_at FROM announcements WHERE chat_id = ? ORDER BY date DESC LIMIT ?;`

	rows, err := DB.Query(query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements for chat ID %d: %w", chatID, err)
	}
	defer rows.Close()

	var announcements []types.Announcement
	for rows.Next() {
		var a types.Announcement
		if err := rows.Scan(&a.ID, &a.Date, &a.ChatID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}
