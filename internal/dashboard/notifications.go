package dashboard

import (
	"context"
	"fmt"
	"time"

	"placement-backend/internal/notifications"
	"placement-backend/internal/placement"
	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/telemetry"
)

// repeatWindow suppresses a sweep notification when one of the same type was
// delivered this recently.
const repeatWindow = 24 * time.Hour

func (s *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]placement.Notification, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if unreadOnly {
		return u.UnreadNotifications(), nil
	}
	return append([]placement.Notification{}, u.Notifications...), nil
}

// GenerateNotifications evaluates every trigger now and stores the results,
// most urgent first, regardless of the delivery window.
func (s *Service) GenerateNotifications(ctx context.Context, userID string) ([]placement.Notification, error) {
	var generated []placement.Notification
	_, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		generated = notifications.Prioritize(notifications.Generate(u, now))
		for _, n := range generated {
			u = u.AddNotification(n, now)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	for _, n := range generated {
		metrics.IncNotification(string(n.Type))
	}
	if generated == nil {
		generated = []placement.Notification{}
	}
	return generated, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		for _, n := range u.Notifications {
			if n.ID == notificationID {
				return u.MarkNotificationRead(notificationID, now), nil
			}
		}
		return placement.User{}, fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	})
	return err
}

func (s *Service) Nudges(ctx context.Context, userID string) ([]string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return notifications.Nudges(u), nil
}

func (s *Service) Alerts(ctx context.Context, userID string) ([]string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return notifications.InterventionAlerts(u, s.now()), nil
}

// SweepNotifications is one scheduled pass for a user: inside the preferred
// delivery window it appends newly triggered notifications, then it drops
// notifications older than the retention period. It returns how many were added.
func (s *Service) SweepNotifications(ctx context.Context, userID string) (int, error) {
	var fresh []placement.Notification
	_, err := s.update(ctx, userID, false, func(u placement.User, now time.Time) (placement.User, error) {
		fresh = fresh[:0]
		if notifications.ShouldNotify(u, now) {
			for _, n := range notifications.Prioritize(notifications.Generate(u, now)) {
				if recentlySent(u.Notifications, n.Type, now) {
					continue
				}
				u = u.AddNotification(n, now)
				fresh = append(fresh, n)
			}
		}
		return u.ReplaceNotifications(notifications.ClearOld(u.Notifications, s.retentionDays, now), now), nil
	})
	if err != nil {
		return 0, err
	}
	for _, n := range fresh {
		metrics.IncNotification(string(n.Type))
	}
	added := len(fresh)
	if added > 0 {
		telemetry.Info("nudge.sweep.user", map[string]any{
			"user_id": userID,
			"added":   added,
		})
	}
	return added, nil
}

func recentlySent(existing []placement.Notification, kind placement.NotificationType, now time.Time) bool {
	for _, n := range existing {
		if n.Type == kind && now.Sub(n.CreatedAt) < repeatWindow {
			return true
		}
	}
	return false
}
