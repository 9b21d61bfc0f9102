package repository

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository defines data access for documents and their workflow rows
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// FindByIDForUpdate takes a row lock so concurrent approve/return calls
	// on the same document serialize inside their transactions.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]model.Document, int64, error)
	Update(ctx context.Context, doc *model.Document) error
	// NextNumber allocates the next DOC-YYYYMMDD-NNNNN number. Callers must
	// run it inside a transaction; an advisory lock serializes concurrent
	// allocations for the same day prefix.
	NextNumber(ctx context.Context) (string, error)
}

// DocumentFilter narrows listings per caller role
type DocumentFilter struct {
	CreatorID  *uuid.UUID
	PendingFor *uuid.UUID // only documents whose current step is assigned to this user
	Finished   *bool
	Page       int
	Limit      int
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).Preload("Creator").Preload("Type").First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// lockForUpdate takes a row lock on dialects that support it. sqlite
// (used in tests) serializes writers on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Document{})
	if filter.CreatorID != nil {
		query = query.Where("user_id = ?", *filter.CreatorID)
	}
	if filter.Finished != nil {
		query = query.Where("is_finished = ?", *filter.Finished)
	}
	if filter.PendingFor != nil {
		query = query.Where(`id IN (
			SELECT p.document_id FROM document_priorities p
			WHERE p.user_id = ? AND p.is_active = ? AND p.is_success = ?
			AND p.ordering = (
				SELECT MIN(p2.ordering) FROM document_priorities p2
				WHERE p2.document_id = p.document_id AND p2.is_active = ? AND p2.is_success = ?
			)
		)`, *filter.PendingFor, true, false, true, false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	if err := query.Preload("Creator").Preload("Type").
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Save(doc).Error
}

func (r *documentRepository) NextNumber(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := "DOC-" + time.Now().Format("20060102") + "-"

	// Use advisory lock to prevent concurrent duplicate document numbers
	if db.Dialector.Name() == "postgres" {
		db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)
	}

	var count int64
	if err := db.Model(&model.Document{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
