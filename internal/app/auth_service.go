package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"plantid/internal/model"
	"plantid/internal/repository"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUsernameExists         = errors.New("username already exists")
	ErrEmailExists            = errors.New("email already exists")
	ErrInvalidCredential      = errors.New("invalid username or password")
	ErrUserNotFound           = errors.New("user not found")
	ErrPasswordFieldsRequired = errors.New("all password fields are required")
	ErrPasswordMismatch       = errors.New("new passwords do not match")
	ErrWrongPassword          = errors.New("current password is incorrect")
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes and x/crypto refuses it outright
	maxPasswordBytes = 72
)

type AuthService struct {
	users repository.Users
	cost  int
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

type LoginInput struct {
	Username string
	Password string
}

// ProfileInput carries a partial profile update. Nil fields are unchanged.
type ProfileInput struct {
	Username        *string
	Email           *string
	FirstName       *string
	LastName        *string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func NewAuthService(users repository.Users) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if username == "" || email == "" || !validPassword(password) {
		return nil, ErrInvalidInput
	}

	if err := s.ensureAvailable(ctx, 0, &username, &email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    trimmedOrNil(input.FirstName),
		LastName:     trimmedOrNil(input.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.conflict(ctx, 0, &username, &email)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Same bcrypt work as a real comparison so timing does not reveal
		// whether the username exists.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(input.Password))
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var update repository.UserUpdate
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrInvalidInput
		}
		if username != user.Username {
			update.Username = &username
		}
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, ErrInvalidInput
		}
		if email != user.Email {
			update.Email = &email
		}
	}
	if input.FirstName != nil {
		v := strings.TrimSpace(*input.FirstName)
		update.FirstName = &v
	}
	if input.LastName != nil {
		v := strings.TrimSpace(*input.LastName)
		update.LastName = &v
	}

	if input.CurrentPassword != "" || input.NewPassword != "" || input.ConfirmPassword != "" {
		if input.CurrentPassword == "" || input.NewPassword == "" || input.ConfirmPassword == "" {
			return nil, ErrPasswordFieldsRequired
		}
		if input.NewPassword != input.ConfirmPassword {
			return nil, ErrPasswordMismatch
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		if !validPassword(input.NewPassword) {
			return nil, ErrInvalidInput
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password failed: %w", err)
		}
		h := string(hash)
		update.PasswordHash = &h
	}

	if update.Empty() {
		return user, nil
	}
	if err := s.ensureAvailable(ctx, userID, update.Username, update.Email); err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.conflict(ctx, userID, update.Username, update.Email)
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// ensureAvailable fails when username or email belongs to a user other than
// selfID.
func (s *AuthService) ensureAvailable(ctx context.Context, selfID uint, username, email *string) error {
	if username != nil {
		existing, err := s.users.GetByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrUsernameExists
		}
	}
	if email != nil {
		existing, err := s.users.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrEmailExists
		}
	}
	return nil
}

// conflict names the colliding field after a unique index rejected a write
// that passed ensureAvailable.
func (s *AuthService) conflict(ctx context.Context, selfID uint, username, email *string) error {
	if err := s.ensureAvailable(ctx, selfID, username, email); err != nil {
		return err
	}
	if username != nil {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

func validPassword(password string) bool {
	return len(password) >= minPasswordLength && len(password) <= maxPasswordBytes
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = bcrypt.GenerateFromPassword([]byte("plantid-dummy-password"), bcrypt.DefaultCost)
	})
	return dummyHashValue
}
