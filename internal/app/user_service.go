package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"tasknest/internal/model"
	"tasknest/internal/repository"
)

var (
	ErrAvatarNotFound = errors.New("avatar not found")
	ErrAvatarInvalid  = errors.New("please upload an image")
	ErrAvatarTooLarge = errors.New("avatar exceeds size limit")
)

type UserService struct {
	userRepo       *repository.UserRepository
	publisher      EventPublisher
	avatarMaxBytes int64
}

// UpdateProfileInput holds the mutable profile fields; nil means "leave
// unchanged". The handler has already rejected unknown keys.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

func NewUserService(userRepo *repository.UserRepository, publisher EventPublisher, avatarMaxBytes int64) *UserService {
	if avatarMaxBytes <= 0 {
		avatarMaxBytes = 1 << 20
	}
	return &UserService{
		userRepo:       userRepo,
		publisher:      publisher,
		avatarMaxBytes: avatarMaxBytes,
	}
}

func (s *UserService) AvatarMaxBytes() int64 {
	return s.avatarMaxBytes
}

// UpdateProfile re-validates changed fields with the signup rules and
// persists nothing unless every change passes.
func (s *UserService) UpdateProfile(user *model.User, input UpdateProfileInput) (*model.User, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailExists
			}
		}
		user.Email = email
	}

	if input.Password != nil {
		password := strings.TrimSpace(*input.Password)
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user with all owned tasks and tokens, then
// publishes a goodbye event.
func (s *UserService) DeleteAccount(ctx context.Context, user *model.User) error {
	if err := s.userRepo.DeleteWithOwned(user.ID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := model.UserEvent{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Kind:   model.NotificationGoodbye,
		}
		if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
			log.Printf("publish goodbye event for user %d failed: %v", user.ID, err)
		}
	}
	return nil
}

// SetAvatar stores the uploaded bytes on the user record. Only image payloads
// within the configured ceiling are accepted; the sniffed content type is kept
// so the avatar can be served back as-is.
func (s *UserService) SetAvatar(user *model.User, data []byte) error {
	if int64(len(data)) > s.avatarMaxBytes {
		return ErrAvatarTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ErrAvatarInvalid
	}

	user.Avatar = data
	user.AvatarType = mtype.String()
	return s.userRepo.Save(user)
}

func (s *UserService) ClearAvatar(user *model.User) error {
	user.Avatar = nil
	user.AvatarType = ""
	return s.userRepo.Save(user)
}

// AvatarByUserID serves any user's stored avatar; the route is public in the
// original contract.
func (s *UserService) AvatarByUserID(userID uint) ([]byte, string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil || len(user.Avatar) == 0 {
		return nil, "", ErrAvatarNotFound
	}
	return user.Avatar, user.AvatarType, nil
}
