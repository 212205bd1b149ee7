package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NGC6543/blogicum/blog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
}

func NewService(userRepo UserRepository, sessionRepo SessionRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// ViewerFor maps a user to the identity the content services evaluate
// visibility against. A nil user is the anonymous viewer.
func ViewerFor(user *User) blog.Viewer {
	if user == nil {
		return blog.Anonymous()
	}

	return blog.Viewer{UserID: user.ID, IsStaff: user.IsStaff}
}

func HashPassword(password string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

var (
	ErrUsernameRequired    = errors.New("username is required")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrCurrentUserNotFound = errors.New("current user not found")
)

const minPasswordLength = 8

func (svc *Service) Register(ctx context.Context, username, password, displayName string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		IsStaff:      false,
		RegisteredAt: time.Now(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		var alreadyExistsErr *UserAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			return nil, alreadyExistsErr
		}

		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

var ErrInvalidCredentials = errors.New("invalid credentials")

const defaultSessionDuration = 30 * 24 * time.Hour

func (svc *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := svc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		var notFoundErr *UserByUsernameNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	timeNow := time.Now()

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(defaultSessionDuration),
	}

	err = svc.sessionRepo.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	err := svc.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := svc.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, &SessionExpiredError{ID: sessionID}
	}

	return session, nil
}

func (svc *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.PasswordHash = "" // clear password hash before returning user

	return user, nil
}

func (svc *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, err := svc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	user.PasswordHash = "" // clear password hash before returning user

	return user, nil
}

// UpdateProfile changes a user's display name. The web layer only ever calls
// this for the authenticated user's own profile.
func (svc *Service) UpdateProfile(ctx context.Context, userID, displayName string) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.DisplayName = strings.TrimSpace(displayName)

	err = svc.userRepo.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.PasswordHash = ""

	return user, nil
}

// EnsureStaff promotes the named users to staff. It runs at startup from the
// STAFF_USERNAMES configuration; unknown usernames are skipped so the flag
// can be set before the user registers.
func (svc *Service) EnsureStaff(ctx context.Context, usernames []string) error {
	for _, username := range usernames {
		user, err := svc.userRepo.FindByUsername(ctx, username)
		if err != nil {
			var notFoundErr *UserByUsernameNotFoundError
			if errors.As(err, &notFoundErr) {
				continue
			}

			return fmt.Errorf("failed to find user by username: %w", err)
		}

		if user.IsStaff {
			continue
		}

		user.IsStaff = true

		err = svc.userRepo.Update(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
	}

	return nil
}
