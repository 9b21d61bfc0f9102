package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"
)

// DashboardResponse is the role-shaped stats payload for the dashboard
type DashboardResponse struct {
	Role             string `json:"role"`
	TotalDocuments   int64  `json:"total_documents"`
	PendingForMe     int64  `json:"pending_for_me"`
	MyDocuments      int64  `json:"my_documents,omitempty"`
	ReturnedToMe     int64  `json:"returned_to_me,omitempty"`
	FinishedTotal    int64  `json:"finished_total,omitempty"`
	UnfinishedTotal  int64  `json:"unfinished_total,omitempty"`
	TotalAmountFixed string `json:"total_amount,omitempty"`
}

type StatisticsService interface {
	Dashboard(ctx context.Context, userID string) (*DashboardResponse, error)
}

// roleDashboard is a closed dispatch over the role set: each variant
// carries its own stats query instead of stringly-typed checks scattered
// around handlers.
type roleDashboard func(ctx context.Context, s *statisticsService, user *model.User, res *DashboardResponse) error

var dashboards = map[string]roleDashboard{
	model.RoleAdmin:          oversightDashboard,
	model.RoleDirector:       oversightDashboard,
	model.RoleDeputyDirector: oversightDashboard,
	model.RoleBuxgalter:      accountingDashboard,
	model.RoleHeaderFRP:      warehouseDashboard,
	model.RoleFRP:            warehouseDashboard,
	model.RoleUser:           plainDashboard,
	model.RoleIntern:         plainDashboard,
}

type statisticsService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewStatisticsService(db *gorm.DB, userRepo repository.UserRepository) StatisticsService {
	return &statisticsService{db: db, userRepo: userRepo}
}

func (s *statisticsService) Dashboard(ctx context.Context, userID string) (*DashboardResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}

	variant, ok := dashboards[user.Role]
	if !ok {
		return nil, errors.New("no dashboard defined for role: " + user.Role)
	}

	res := &DashboardResponse{Role: user.Role}
	if err := variant(ctx, s, user, res); err != nil {
		return nil, err
	}
	return res, nil
}

// pendingFor counts documents whose current ledger step is assigned to the user
func (s *statisticsService) pendingFor(ctx context.Context, user *model.User) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.DocumentPriority{}).
		Where("user_id = ? AND is_active = ? AND is_success = ?", user.ID, true, false).
		Count(&count).Error
	return count, err
}

func oversightDashboard(ctx context.Context, s *statisticsService, user *model.User, res *DashboardResponse) error {
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Document{}).Count(&res.TotalDocuments).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Document{}).Where("is_finished = ?", true).Count(&res.FinishedTotal).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Document{}).Where("is_finished = ?", false).Count(&res.UnfinishedTotal).Error; err != nil {
		return err
	}

	pending, err := s.pendingFor(ctx, user)
	if err != nil {
		return err
	}
	res.PendingForMe = pending
	return nil
}

func accountingDashboard(ctx context.Context, s *statisticsService, user *model.User, res *DashboardResponse) error {
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Document{}).Count(&res.TotalDocuments).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Document{}).Where("is_finished = ?", true).Count(&res.FinishedTotal).Error; err != nil {
		return err
	}

	// Sum only documents the accountant has closed
	var sum struct {
		Total string
	}
	if err := db.Model(&model.Document{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("is_finished = ?", true).
		Scan(&sum).Error; err != nil {
		return err
	}
	res.TotalAmountFixed = sum.Total

	pending, err := s.pendingFor(ctx, user)
	if err != nil {
		return err
	}
	res.PendingForMe = pending
	return nil
}

func warehouseDashboard(ctx context.Context, s *statisticsService, user *model.User, res *DashboardResponse) error {
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Document{}).
		Where("user_id = ? OR in_charge = ?", user.ID, user.ID).
		Count(&res.MyDocuments).Error; err != nil {
		return err
	}
	if err := db.Model(&model.DocumentReturned{}).
		Where("to_id = ? AND is_solved = ? AND is_deleted = ?", user.ID, false, false).
		Count(&res.ReturnedToMe).Error; err != nil {
		return err
	}

	pending, err := s.pendingFor(ctx, user)
	if err != nil {
		return err
	}
	res.PendingForMe = pending
	res.TotalDocuments = res.MyDocuments
	return nil
}

func plainDashboard(ctx context.Context, s *statisticsService, user *model.User, res *DashboardResponse) error {
	if err := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("user_id = ?", user.ID).
		Count(&res.MyDocuments).Error; err != nil {
		return err
	}
	res.TotalDocuments = res.MyDocuments
	return nil
}
