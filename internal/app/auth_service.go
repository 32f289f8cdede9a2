package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"tasknest/internal/model"
	"tasknest/internal/pkg/jwtutil"
	"tasknest/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("unable to login")
	ErrUnauthorized      = errors.New("please authenticate")
)

var validate = validator.New()

// EventPublisher delivers user lifecycle events to the notification queue.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event model.UserEvent) error
}

type AuthService struct {
	userRepo  *repository.UserRepository
	tokenRepo *repository.TokenRepository
	publisher EventPublisher
	jwtSecret string
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	tokenRepo *repository.TokenRepository,
	publisher EventPublisher,
	jwtSecret string,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		publisher: publisher,
		jwtSecret: jwtSecret,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.UserEvent{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Kind:   model.NotificationWelcome,
	})

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and appends a fresh token to the user's session
// list. Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token into its user. The token must carry a
// valid signature and still be present in the user's session list; a token
// removed by logout no longer authenticates even though its signature checks
// out.
func (s *AuthService) Authenticate(token string) (*model.User, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	stored, err := s.tokenRepo.Get(claims.UserID, token)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Logout revokes exactly the presented token; other sessions stay active.
func (s *AuthService) Logout(userID uint, token string) error {
	return s.tokenRepo.Delete(userID, token)
}

func (s *AuthService) LogoutAll(userID uint) error {
	return s.tokenRepo.DeleteAllForUser(userID)
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, userID)
	if err != nil {
		return "", fmt.Errorf("generate token failed: %w", err)
	}
	if err := s.tokenRepo.Add(&model.SessionToken{UserID: userID, Token: token}); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, event model.UserEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
		log.Printf("publish %s event for user %d failed: %v", event.Kind, event.UserID, err)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

func validateName(name string) error {
	if name == "" {
		return ErrInvalidInput
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidInput
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return ErrInvalidInput
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrInvalidInput
	}
	return nil
}
