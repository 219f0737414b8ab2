package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"servify-server/apperrors"
	"servify-server/models"
)

// NotificationService is the append-only sink lifecycle transitions write to,
// plus the read/ack surface users poll.
type NotificationService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewNotificationService(db *gorm.DB, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{db: db, log: log.Named("notifications")}
}

// Enqueue appends a notification inside the caller's transaction, so it is
// discarded if the transition that produced it rolls back.
func (s *NotificationService) Enqueue(tx *gorm.DB, userID uint, title, body string, kind models.NotificationKind) error {
	if kind == "" {
		kind = models.NotificationSystem
	}
	notification := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Kind:   kind,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return dbError(err, "failed to enqueue notification")
	}
	s.log.Debugw("notification enqueued", "user_id", userID, "title", title)
	return nil
}

type ListNotificationsInput struct {
	PageRequest
	UnreadOnly bool
}

type NotificationPage struct {
	*Paginated[models.Notification]
	Unread int64 `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, actor Actor, in ListNotificationsInput) (*NotificationPage, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Notification{}).Where("user_id = ?", actor.UserID)
	if in.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	page, err := paginate[models.Notification](query, in.PageRequest, "created_at DESC, id DESC")
	if err != nil {
		return nil, dbError(err, "failed to list notifications")
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actor.UserID, false).
		Count(&unread).Error; err != nil {
		return nil, dbError(err, "failed to count unread notifications")
	}

	return &NotificationPage{Paginated: page, Unread: unread}, nil
}

func (s *NotificationService) owned(db *gorm.DB, actor Actor, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := db.First(&notification, id).Error; err != nil {
		return nil, notFound(err, "notification not found")
	}
	if notification.UserID != actor.UserID {
		return nil, apperrors.Forbidden("notification belongs to another user")
	}
	return &notification, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint) (*models.Notification, error) {
	db := s.db.WithContext(ctx)
	notification, err := s.owned(db, actor, id)
	if err != nil {
		return nil, err
	}
	if notification.Read {
		return notification, nil
	}
	if err := db.Model(notification).Update("read", true).Error; err != nil {
		return nil, dbError(err, "failed to mark notification as read")
	}
	notification.Read = true
	return notification, nil
}

// MarkAllRead returns the number of notifications that changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actor.UserID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, dbError(result.Error, "failed to mark notifications as read")
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor Actor, id uint) error {
	db := s.db.WithContext(ctx)
	notification, err := s.owned(db, actor, id)
	if err != nil {
		return err
	}
	if err := db.Delete(notification).Error; err != nil {
		return dbError(err, "failed to delete notification")
	}
	return nil
}
