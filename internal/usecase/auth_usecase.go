package usecase

import (
	"context"

	"clinic-front-desk/internal/converter"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/pkg/actor"
	"clinic-front-desk/pkg/jwt"
	"clinic-front-desk/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	auditService service.AuditService
	metrics      *metrics.Metrics
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	auditService service.AuditService,
	m *metrics.Metrics,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		auditService: auditService,
		metrics:      m,
	}
}

// Register creates a front-desk account. A taken username is reported as
// Unauthorized, like a failed login.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByUsername(tx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	// Password is hashed by the entity hook on save
	user := &entity.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     entity.DefaultRole,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		u.log.Warnf("Failed to create user: %+v", err)
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	response := converter.UserToResponse(user)
	auditCtx := actor.WithActor(ctx, actor.Actor{UserID: user.ID, Username: user.Username, Role: string(user.Role)})
	if err := u.auditService.LogCreate(auditCtx, tx, entity.AuditActionUserRegister, "user", user.ID.String(), response); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return response, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// Read-only, no transaction needed
	user, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil || !user.CheckPassword(req.Password) || !user.Active() {
		u.countLogin("failure")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := u.jwtService.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	u.countLogin("success")

	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
		User:        converter.UserToResponse(user),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, notFound(ErrUserNotFound, "User", userID)
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) countLogin(result string) {
	if u.metrics != nil {
		u.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}
