package repository

import (
	"context"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/usecase/commands"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(pool db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: pool}
}

const enqueueNotificationSQL = `
INSERT INTO notification_jobs (id, user_id, channel, template, payload, status, created_at)
VALUES ($1, $2, $3, $4, $5, 'queued', now())
`

func (r *NotificationRepository) Enqueue(ctx context.Context, tx db.DBTX, msg commands.NotificationMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	_, err := tx.Exec(ctx, enqueueNotificationSQL,
		msg.ID, msg.UserID, msg.Channel, msg.Template, msg.Payload,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue notification", err)
	}
	return nil
}
