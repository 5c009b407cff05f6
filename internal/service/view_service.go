package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/logging"
	"github.com/vidtube/vidtube/internal/repo"
	"github.com/vidtube/vidtube/internal/transport"
)

// ViewService materializes read-only aggregated projections from the user,
// subscription and video collections.
type ViewService struct {
	Repo repo.GormRepo
}

// ChannelProfile joins the subscription edges twice: once as channel for
// the subscriber count, once as subscriber for the followed-channel count.
// viewerID is nil for anonymous requests, making IsSubscribed false.
func (s *ViewService) ChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*transport.ChannelProfile, error) {
	l := logging.FromContext(ctx).With("svc", "views.channel_profile")

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel does not exist", ErrNotFound)
		}
		l.Error("channel lookup failed", "error", err)
		return nil, fmt.Errorf("%w: could not load channel", ErrInternal)
	}

	subscribers, err := s.Repo.CountSubscribers(ctx, user.ID)
	if err != nil {
		l.Error("subscriber count failed", "error", err)
		return nil, fmt.Errorf("%w: could not load channel", ErrInternal)
	}

	subscribedTo, err := s.Repo.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		l.Error("subscribed-to count failed", "error", err)
		return nil, fmt.Errorf("%w: could not load channel", ErrInternal)
	}

	isSubscribed := false
	if viewerID != nil {
		isSubscribed, err = s.Repo.IsSubscribed(ctx, *viewerID, user.ID)
		if err != nil {
			l.Error("is-subscribed check failed", "error", err)
			return nil, fmt.Errorf("%w: could not load channel", ErrInternal)
		}
	}

	return &transport.ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		Email:                     user.Email,
		FullName:                  user.FullName,
		Avatar:                    user.Avatar,
		CoverImage:                user.CoverImage,
		SubscriberCount:           subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}

// WatchHistory returns the requester's history in stored order, each video
// enriched with its owner's reduced projection. An empty history is an
// empty slice, not an error.
func (s *ViewService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]transport.WatchHistoryItem, error) {
	rows, err := s.Repo.WatchHistory(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("watch history query failed", "svc", "views.watch_history", "error", err)
		return nil, fmt.Errorf("%w: could not load watch history", ErrInternal)
	}

	items := make([]transport.WatchHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, transport.WatchHistoryItem{
			ID:          row.VideoID,
			Title:       row.Title,
			Description: row.Description,
			Thumbnail:   row.Thumbnail,
			VideoFile:   row.VideoFile,
			Duration:    row.Duration,
			Views:       row.Views,
			CreatedAt:   row.VideoCreatedAt,
			Owner: transport.VideoOwner{
				FullName: row.OwnerFullName,
				Username: row.OwnerUsername,
				Avatar:   row.OwnerAvatar,
			},
		})
	}
	return items, nil
}
