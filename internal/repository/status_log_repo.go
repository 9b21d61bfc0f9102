package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusLogRepository is the append/query access to the document stamp trail.
// Rows are never deleted, only flipped inactive.
type StatusLogRepository interface {
	Append(ctx context.Context, entry *model.DocumentStatusLog) error
	ActiveHistory(ctx context.Context, documentID uuid.UUID) ([]model.DocumentStatusLog, error)
	Deactivate(ctx context.Context, documentID uuid.UUID, status string) error
}

type statusLogRepository struct {
	db *gorm.DB
}

func NewStatusLogRepository(db *gorm.DB) StatusLogRepository {
	return &statusLogRepository{db: db}
}

func (r *statusLogRepository) Append(ctx context.Context, entry *model.DocumentStatusLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *statusLogRepository) ActiveHistory(ctx context.Context, documentID uuid.UUID) ([]model.DocumentStatusLog, error) {
	var entries []model.DocumentStatusLog
	if err := GetDB(ctx, r.db).Preload("User").
		Where("document_id = ? AND is_active = ?", documentID, true).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Deactivate hides superseded rows of a given status from the visible trail
func (r *statusLogRepository) Deactivate(ctx context.Context, documentID uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.DocumentStatusLog{}).
		Where("document_id = ? AND status = ? AND is_active = ?", documentID, status, true).
		Update("is_active", false).Error
}
