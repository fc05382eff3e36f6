package bootstrap

import (
	"context"
	"fmt"

	"clinic-front-desk/config"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/internal/usecase"
	"clinic-front-desk/pkg/validator"

	"github.com/sirupsen/logrus"
)

// CreateAdmin provisions an admin account so the first operator can sign in.
// It goes through the same usecase as POST /users, audit entry included.
func CreateAdmin(ctx context.Context, cfg *config.Config, log *logrus.Logger, req *dto.CreateUserRequest) (*dto.UserDetailResponse, error) {
	req.Role = string(entity.RoleAdmin)

	v := validator.NewValidator()
	if err := v.Validate(req); err != nil {
		return nil, fmt.Errorf("invalid admin account: %v", v.FormatValidationErrors(err))
	}

	db, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)

	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	userUsecase := usecase.NewUserUsecase(db, log, repository.NewUserRepository(), auditService)

	return userUsecase.CreateUser(ctx, req)
}
