package usecase

import (
	"context"

	"clinic-front-desk/internal/converter"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/pkg/actor"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserUsecase is account administration for admins and the CLI
type UserUsecase interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDetailResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserDetailResponse, error)
	GetAllUsers(ctx context.Context) (*dto.UserListResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserDetailResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) UserUsecase {
	return &userUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// CreateUser conflicts on a taken username, unlike public registration
func (u *userUsecase) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDetailResponse, error) {
	role := entity.DefaultRole
	if req.Role != "" {
		role = entity.Role(req.Role)
		if !role.IsValid() {
			return nil, ErrInvalidRole
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByUsername(tx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameConflict
	}

	user := &entity.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		u.log.Warnf("Failed to create user: %+v", err)
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameConflict
		}
		return nil, err
	}

	response := converter.UserToDetailResponse(user)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionUserRegister, "user", user.ID.String(), converter.UserToResponse(user)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return response, nil
}

func (u *userUsecase) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserDetailResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, notFound(ErrUserNotFound, "User", userID)
	}

	return converter.UserToDetailResponse(user), nil
}

func (u *userUsecase) GetAllUsers(ctx context.Context) (*dto.UserListResponse, error) {
	users, err := u.userRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all users: %+v", err)
		return nil, err
	}

	responses := converter.UsersToDetailResponses(users)

	return &dto.UserListResponse{
		Users: responses,
		Total: len(responses),
	}, nil
}

func (u *userUsecase) UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserDetailResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, notFound(ErrUserNotFound, "User", userID)
	}

	oldValue := converter.UserToDetailResponse(user)

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		if !role.IsValid() {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if req.IsActive != nil {
		isActive := *req.IsActive
		user.IsActive = &isActive
	}
	if req.Password != nil {
		user.SetPassword(*req.Password)
	}

	if err := u.userRepo.Update(tx, user); err != nil {
		u.log.Warnf("Failed to update user: %+v", err)
		return nil, err
	}

	newValue := converter.UserToDetailResponse(user)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionUserUpdate, "user", userID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if current := actor.UserID(ctx); current != nil && *current == userID {
		return ErrCannotDeleteSelf
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return err
	}
	if user == nil {
		return notFound(ErrUserNotFound, "User", userID)
	}

	// Log first: the audit row references the acting user, not the deleted one
	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionUserDelete, "user", userID.String(), converter.UserToDetailResponse(user)); err != nil {
		return err
	}

	rows, err := u.userRepo.Delete(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to delete user: %+v", err)
		return err
	}
	if rows == 0 {
		return notFound(ErrUserNotFound, "User", userID)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
