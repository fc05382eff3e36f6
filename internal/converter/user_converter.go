package converter

import (
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
)

// UserToResponse converts a User entity to its public projection
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
	}
}

// UserToDetailResponse adds account state for administrators
func UserToDetailResponse(user *entity.User) *dto.UserDetailResponse {
	if user == nil {
		return nil
	}

	return &dto.UserDetailResponse{
		UserResponse: *UserToResponse(user),
		IsActive:     user.Active(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func UsersToDetailResponses(users []entity.User) []dto.UserDetailResponse {
	responses := make([]dto.UserDetailResponse, len(users))
	for i := range users {
		responses[i] = *UserToDetailResponse(&users[i])
	}
	return responses
}
