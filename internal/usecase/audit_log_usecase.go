package usecase

import (
	"context"

	"clinic-front-desk/internal/converter"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetAllAuditLogs pages through the trail newest first
func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, req *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error) {
	filter, err := toAuditLogFilter(req)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)

	total, err := u.auditLogRepo.Count(db, filter)
	if err != nil {
		u.log.Warnf("Failed to count audit logs: %+v", err)
		return nil, err
	}

	logs, err := u.auditLogRepo.FindAll(db, filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:   converter.AuditLogsToResponses(logs),
		Total:  int(total),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, notFound(ErrAuditLogNotFound, "Audit log", id)
	}

	return converter.AuditLogToResponse(auditLog), nil
}

func toAuditLogFilter(req *dto.AuditLogFilterRequest) (*entity.AuditLogFilter, error) {
	filter := &entity.AuditLogFilter{Limit: DefaultAuditLogLimit}
	if req == nil {
		return filter, nil
	}

	userID, err := parseOptionalID(req.UserID)
	if err != nil {
		return nil, err
	}
	filter.UserID = userID
	filter.Action = req.Action
	filter.Entity = req.Entity

	switch {
	case req.Limit > MaxAuditLogLimit:
		filter.Limit = MaxAuditLogLimit
	case req.Limit > 0:
		filter.Limit = req.Limit
	}
	if req.Offset > 0 {
		filter.Offset = req.Offset
	}
	return filter, nil
}
