package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// UserService handles business logic for account operations
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		postRepo:   postRepo,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new account. Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(username) > model.MaxUsernameLength {
		return nil, fmt.Errorf("username too long")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(email) > model.MaxEmailLength {
		return nil, fmt.Errorf("email too long")
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHashed: hashed,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a profile by username, enriched with post and graph
// counts plus the viewer's follow status. Count failures degrade to zero
// rather than failing the profile.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:      user,
		AvatarURL: user.AvatarURL(128),
	}

	if count, err := s.postRepo.CountByUser(ctx, user.ID); err == nil {
		profile.PostCount = count
	}
	if count, err := s.followRepo.FollowerCount(ctx, user.ID); err == nil {
		profile.FollowerCount = count
	}
	if count, err := s.followRepo.FollowingCount(ctx, user.ID); err == nil {
		profile.FollowingCount = count
	}

	if viewerID != nil && *viewerID != user.ID {
		if isFollowing, err := s.followRepo.Exists(ctx, *viewerID, user.ID); err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// UpdateAboutMe updates the caller's profile text.
func (s *UserService) UpdateAboutMe(ctx context.Context, userID int64, aboutMe *string) error {
	if aboutMe != nil && len(*aboutMe) > model.MaxAboutMeLength {
		return fmt.Errorf("about_me too long (max %d characters)", model.MaxAboutMeLength)
	}

	if err := s.repo.UpdateAboutMe(ctx, userID, aboutMe); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// TouchLastSeen records account activity. Called from the auth middleware on
// every authenticated request; failures are the caller's to ignore.
func (s *UserService) TouchLastSeen(ctx context.Context, userID int64) error {
	return s.repo.TouchLastSeen(ctx, userID, time.Now())
}
