package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/models"
)

// WatchHistoryRow is the flattened join of a watch event, its video and the
// video's owner, scanned straight out of the store.
type WatchHistoryRow struct {
	VideoID        uuid.UUID
	Title          string
	Description    string
	Thumbnail      string
	VideoFile      string
	Duration       float64
	Views          int64
	VideoCreatedAt time.Time
	OwnerFullName  string
	OwnerUsername  string
	OwnerAvatar    string
}

// AddWatchEvent appends a video to the user's history. Order is carried by
// the event's autoincrement id.
func (r GormRepo) AddWatchEvent(ctx context.Context, userID, videoID uuid.UUID) error {
	event := models.WatchEvent{UserID: userID, VideoID: videoID}
	return translate(r.DB.WithContext(ctx).Create(&event).Error)
}

// WatchHistory resolves the user's history in stored order, each video
// joined with its owner. Videos that no longer exist drop out of the join.
func (r GormRepo) WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchHistoryRow, error) {
	var rows []WatchHistoryRow
	err := r.DB.WithContext(ctx).
		Table("watch_events").
		Select(`videos.id AS video_id,
			videos.title AS title,
			videos.description AS description,
			videos.thumbnail AS thumbnail,
			videos.video_file AS video_file,
			videos.duration AS duration,
			videos.views AS views,
			videos.created_at AS video_created_at,
			owners.full_name AS owner_full_name,
			owners.username AS owner_username,
			owners.avatar AS owner_avatar`).
		Joins("JOIN videos ON videos.id = watch_events.video_id").
		Joins("JOIN users AS owners ON owners.id = videos.owner_id").
		Where("watch_events.user_id = ?", userID).
		Order("watch_events.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
