package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var ErrCrossLocation = errors.New("operation not allowed for another location")

// CreateUserInput carries the fields staff and admins may set on a user
type CreateUserInput struct {
	Username    string
	Password    string
	DisplayName string
	Role        model.UserRole
	LocationID  *string
}

// UpdateUserInput carries the mutable user fields. Nil pointers leave
// the current value in place.
type UpdateUserInput struct {
	Username    *string
	DisplayName *string
	Role        *model.UserRole
	LocationID  *string
}

type UserService interface {
	List(actor *model.User) ([]model.User, error)
	ListCustomers(actor *model.User) ([]model.User, error)
	Create(actor *model.User, input CreateUserInput) (*model.User, error)
	Update(actor *model.User, userID uint, input UpdateUserInput) (*model.User, error)
	Delete(actor *model.User, userID uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(actor *model.User) ([]model.User, error) {
	return s.userRepo.FindAll(authz.ResolveScope(actor))
}

// ListCustomers returns the customer accounts the actor may assign to
// vehicles and orders
func (s *userService) ListCustomers(actor *model.User) ([]model.User, error) {
	if actor.Role == model.RoleAdmin {
		return s.userRepo.FindCustomersByLocation("")
	}
	if actor.Role.IsStaff() && actor.LocationID != nil {
		return s.userRepo.FindCustomersByLocation(*actor.LocationID)
	}
	return nil, ErrCrossLocation
}

// sameLocation reports whether a staff actor and the target location match
func sameLocation(actor *model.User, locationID *string) bool {
	if actor.LocationID == nil || locationID == nil {
		return false
	}
	return *actor.LocationID == *locationID
}

func (s *userService) Create(actor *model.User, input CreateUserInput) (*model.User, error) {
	role := input.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	// 従業員は自分の拠点のユーザーのみ作成可能
	if actor.Role.IsStaff() && !sameLocation(actor, input.LocationID) {
		logger.Warn("User create rejected, cross-location", map[string]interface{}{
			"actor_id": actor.ID,
		})
		return nil, ErrCrossLocation
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Username:    input.Username,
		Password:    input.Password, // hashed by the model hook
		Role:        role,
		DisplayName: input.DisplayName,
		LocationID:  input.LocationID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User created", map[string]interface{}{
		"user_id":  user.ID,
		"actor_id": actor.ID,
		"role":     user.Role,
	})
	return user, nil
}

func (s *userService) Update(actor *model.User, userID uint, input UpdateUserInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 従業員は自分の拠点のユーザーのみ更新可能
	if actor.Role.IsStaff() {
		if !sameLocation(actor, user.LocationID) {
			return nil, ErrCrossLocation
		}
		if input.LocationID != nil && !sameLocation(actor, input.LocationID) {
			return nil, ErrCrossLocation
		}
	}

	if input.Username != nil && *input.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(*input.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.LocationID != nil {
		user.LocationID = input.LocationID
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(actor *model.User, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 従業員は自分の拠点のユーザーのみ削除可能
	if actor.Role.IsStaff() && !sameLocation(actor, user.LocationID) {
		return ErrCrossLocation
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id":  user.ID,
		"actor_id": actor.ID,
	})
	return nil
}
