package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// AddOutboxEvent stores an event in the caller's transaction
func (s *Store) AddOutboxEvent(ctx context.Context, e *model.OutboxEvent) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := s.conn(ctx).Create(e).Error; err != nil {
		return classify("add outbox event", err)
	}
	return nil
}

// PendingOutboxEvents returns up to limit unsent events, oldest first
func (s *Store) PendingOutboxEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.OutboxEvent
	err := s.conn(ctx).Where("sent_at IS NULL").Order("created_at").Order("id").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, classify("pending outbox events", err)
	}
	return out, nil
}

// MarkOutboxSent stamps events as delivered
func (s *Store) MarkOutboxSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("update")(time.Now())

	err := s.conn(ctx).Model(&model.OutboxEvent{}).Where("id IN ?", ids).Update("sent_at", at).Error
	return classify("mark outbox sent", err)
}

// MarkOutboxFailed counts a failed delivery attempt
func (s *Store) MarkOutboxFailed(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	err := s.conn(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
	return classify("mark outbox failed", err)
}
