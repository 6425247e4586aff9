package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"microblog/internal/model"
	"microblog/internal/service"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with hashed password", func(t *testing.T) {
		var created *model.User
		userRepo := &mockUserRepo{
			ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return false, nil },
			ExistsByEmailFn:    func(ctx context.Context, email string) (bool, error) { return false, nil },
			CreateFn: func(ctx context.Context, user *model.User) error {
				user.ID = 1
				created = user
				return nil
			},
		}
		svc := service.NewUserService(userRepo, &mockFollowRepo{}, &mockPostRepo{})

		user, err := svc.Register(ctx, &model.RegisterRequest{
			Username: "susan",
			Email:    "Susan@Example.com",
			Password: "cat",
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if created == nil {
			t.Fatal("expected user to be persisted")
		}
		if user.Email != "susan@example.com" {
			t.Errorf("expected lowercased email, got %q", user.Email)
		}
		if user.PasswordHashed == "cat" || user.PasswordHashed == "" {
			t.Error("password was not hashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte("cat")); err != nil {
			t.Errorf("stored hash does not verify: %v", err)
		}
	})

	t.Run("rejects taken username", func(t *testing.T) {
		userRepo := &mockUserRepo{
			ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return true, nil },
		}
		svc := service.NewUserService(userRepo, &mockFollowRepo{}, &mockPostRepo{})

		_, err := svc.Register(ctx, &model.RegisterRequest{Username: "susan", Email: "s@example.com", Password: "cat"})
		if !errors.Is(err, model.ErrUsernameExists) {
			t.Errorf("expected ErrUsernameExists, got %v", err)
		}
	})

	t.Run("rejects taken email", func(t *testing.T) {
		userRepo := &mockUserRepo{
			ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return false, nil },
			ExistsByEmailFn:    func(ctx context.Context, email string) (bool, error) { return true, nil },
		}
		svc := service.NewUserService(userRepo, &mockFollowRepo{}, &mockPostRepo{})

		_, err := svc.Register(ctx, &model.RegisterRequest{Username: "susan", Email: "s@example.com", Password: "cat"})
		if !errors.Is(err, model.ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := service.NewUserService(&mockUserRepo{}, &mockFollowRepo{}, &mockPostRepo{})

		cases := []model.RegisterRequest{
			{Username: "", Email: "s@example.com", Password: "cat"},
			{Username: "susan", Email: "", Password: "cat"},
			{Username: "susan", Email: "not-an-email", Password: "cat"},
			{Username: "susan", Email: "s@example.com", Password: ""},
			{Username: strings.Repeat("x", model.MaxUsernameLength+1), Email: "s@example.com", Password: "cat"},
		}
		for _, req := range cases {
			if _, err := svc.Register(ctx, &req); err == nil {
				t.Errorf("expected error for %+v", req)
			}
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("cat"), bcrypt.DefaultCost)
	stored := &model.User{ID: 1, Username: "susan", PasswordHashed: string(hashed)}

	userRepo := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "susan" {
				return stored, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := service.NewUserService(userRepo, &mockFollowRepo{}, &mockPostRepo{})

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, &model.LoginRequest{Username: "susan", Password: "cat"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if user.ID != 1 {
			t.Errorf("expected user 1, got %d", user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Username: "susan", Password: "dog"})
		if !errors.Is(err, model.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username maps to same error", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Username: "nobody", Password: "cat"})
		if !errors.Is(err, model.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	stored := &model.User{ID: 7, Username: "john", Email: "john@example.com"}
	userRepo := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "john" {
				return stored, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	followRepo := &mockFollowRepo{
		FollowerCountFn:  func(ctx context.Context, userID int64) (int64, error) { return 3, nil },
		FollowingCountFn: func(ctx context.Context, userID int64) (int64, error) { return 2, nil },
		ExistsFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			return followerID == 9 && followeeID == 7, nil
		},
	}
	postRepo := &mockPostRepo{
		CountByUserFn: func(ctx context.Context, userID int64) (int64, error) { return 5, nil },
	}
	svc := service.NewUserService(userRepo, followRepo, postRepo)

	viewer := int64(9)
	profile, err := svc.GetProfile(ctx, "john", &viewer)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	if profile.PostCount != 5 || profile.FollowerCount != 3 || profile.FollowingCount != 2 {
		t.Errorf("unexpected counts: %+v", profile)
	}
	if !profile.IsFollowing {
		t.Error("expected IsFollowing true")
	}
	if profile.AvatarURL == "" {
		t.Error("expected gravatar URL")
	}

	if _, err := svc.GetProfile(ctx, "ghost", nil); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
