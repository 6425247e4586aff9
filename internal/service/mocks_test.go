package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"microblog/internal/model"
	"microblog/internal/queue"
	"microblog/internal/repository"
)

// =============================================================================
// Mock Implementations
// =============================================================================
//
// Function-field mocks: tests set only the methods they expect to be called.
// An unset method panics, which surfaces unexpected calls immediately.

type mockUserRepo struct {
	CreateFn                 func(ctx context.Context, user *model.User) error
	GetByIDFn                func(ctx context.Context, id int64) (*model.User, error)
	GetByUsernameFn          func(ctx context.Context, username string) (*model.User, error)
	GetByEmailFn             func(ctx context.Context, email string) (*model.User, error)
	GetByTokenFn             func(ctx context.Context, token string) (*model.User, error)
	ExistsByUsernameFn       func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFn          func(ctx context.Context, email string) (bool, error)
	UpdateTokenFn            func(ctx context.Context, userID int64, token *string, expiration *time.Time) error
	UpdatePasswordFn         func(ctx context.Context, userID int64, passwordHashed string) error
	UpdateAboutMeFn          func(ctx context.Context, userID int64, aboutMe *string) error
	TouchLastSeenFn          func(ctx context.Context, userID int64, at time.Time) error
	SetLastMessageReadTimeFn func(ctx context.Context, userID int64, at time.Time) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.CreateFn(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.GetByUsernameFn(ctx, username)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.GetByEmailFn(ctx, email)
}
func (m *mockUserRepo) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return m.GetByTokenFn(ctx, token)
}
func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.ExistsByUsernameFn(ctx, username)
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.ExistsByEmailFn(ctx, email)
}
func (m *mockUserRepo) UpdateToken(ctx context.Context, userID int64, token *string, expiration *time.Time) error {
	return m.UpdateTokenFn(ctx, userID, token, expiration)
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error {
	return m.UpdatePasswordFn(ctx, userID, passwordHashed)
}
func (m *mockUserRepo) UpdateAboutMe(ctx context.Context, userID int64, aboutMe *string) error {
	return m.UpdateAboutMeFn(ctx, userID, aboutMe)
}
func (m *mockUserRepo) TouchLastSeen(ctx context.Context, userID int64, at time.Time) error {
	return m.TouchLastSeenFn(ctx, userID, at)
}
func (m *mockUserRepo) SetLastMessageReadTime(ctx context.Context, userID int64, at time.Time) error {
	return m.SetLastMessageReadTimeFn(ctx, userID, at)
}

type mockFollowRepo struct {
	CreateFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	DeleteFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	ExistsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	FollowerCountFn  func(ctx context.Context, userID int64) (int64, error)
	FollowingCountFn func(ctx context.Context, userID int64) (int64, error)
	GetFollowersFn   func(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
	GetFollowingFn   func(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error)
}

func (m *mockFollowRepo) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return m.CreateFn(ctx, followerID, followeeID)
}
func (m *mockFollowRepo) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return m.DeleteFn(ctx, followerID, followeeID)
}
func (m *mockFollowRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return m.ExistsFn(ctx, followerID, followeeID)
}
func (m *mockFollowRepo) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	return m.FollowerCountFn(ctx, userID)
}
func (m *mockFollowRepo) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	return m.FollowingCountFn(ctx, userID)
}
func (m *mockFollowRepo) GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	return m.GetFollowersFn(ctx, userID, limit, offset)
}
func (m *mockFollowRepo) GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.UserSummary, error) {
	return m.GetFollowingFn(ctx, userID, limit, offset)
}

type mockPostRepo struct {
	CreateFn          func(ctx context.Context, userID int64, body string) (*model.Post, error)
	GetByIDFn         func(ctx context.Context, postID int64) (*model.Post, error)
	GetByIDsOrderedFn func(ctx context.Context, ids []int64) ([]model.Post, error)
	TimelineFn        func(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
	ExploreFn         func(ctx context.Context, limit, offset int) ([]model.Post, error)
	ByUserFn          func(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error)
	CountByUserFn     func(ctx context.Context, userID int64) (int64, error)
	AllByUserAscFn    func(ctx context.Context, userID int64) ([]model.Post, error)
	ListAfterFn       func(ctx context.Context, afterID int64, limit int) ([]model.Post, error)
}

func (m *mockPostRepo) Create(ctx context.Context, userID int64, body string) (*model.Post, error) {
	return m.CreateFn(ctx, userID, body)
}
func (m *mockPostRepo) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return m.GetByIDFn(ctx, postID)
}
func (m *mockPostRepo) GetByIDsOrdered(ctx context.Context, ids []int64) ([]model.Post, error) {
	return m.GetByIDsOrderedFn(ctx, ids)
}
func (m *mockPostRepo) Timeline(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	return m.TimelineFn(ctx, userID, limit, offset)
}
func (m *mockPostRepo) Explore(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return m.ExploreFn(ctx, limit, offset)
}
func (m *mockPostRepo) ByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	return m.ByUserFn(ctx, userID, limit, offset)
}
func (m *mockPostRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return m.CountByUserFn(ctx, userID)
}
func (m *mockPostRepo) AllByUserAsc(ctx context.Context, userID int64) ([]model.Post, error) {
	return m.AllByUserAscFn(ctx, userID)
}
func (m *mockPostRepo) ListAfter(ctx context.Context, afterID int64, limit int) ([]model.Post, error) {
	return m.ListAfterFn(ctx, afterID, limit)
}

type mockMessageRepo struct {
	CreateFn      func(ctx context.Context, senderID, recipientID int64, body string) (*model.Message, error)
	ReceivedFn    func(ctx context.Context, recipientID int64, limit, offset int) ([]model.Message, error)
	CountUnreadFn func(ctx context.Context, recipientID int64) (int, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, senderID, recipientID int64, body string) (*model.Message, error) {
	return m.CreateFn(ctx, senderID, recipientID, body)
}
func (m *mockMessageRepo) Received(ctx context.Context, recipientID int64, limit, offset int) ([]model.Message, error) {
	return m.ReceivedFn(ctx, recipientID, limit, offset)
}
func (m *mockMessageRepo) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	return m.CountUnreadFn(ctx, recipientID)
}

// mockNotificationRepo keeps notifications in memory with the same coalescing
// rule as the database: one live row per (user, name).
type mockNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]map[string]model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{rows: make(map[int64]map[string]model.Notification)}
}

func (m *mockNotificationRepo) Upsert(ctx context.Context, userID int64, name string, timestamp float64, payloadJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byName, ok := m.rows[userID]
	if !ok {
		byName = make(map[string]model.Notification)
		m.rows[userID] = byName
	}

	id := byName[name].ID
	if id == 0 {
		m.nextID++
		id = m.nextID
	}
	byName[name] = model.Notification{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Timestamp:   timestamp,
		PayloadJSON: payloadJSON,
	}
	return nil
}

func (m *mockNotificationRepo) ListSince(ctx context.Context, userID int64, since float64) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Notification
	for _, n := range m.rows[userID] {
		if n.Timestamp > since {
			out = append(out, n)
		}
	}
	// Ascending (timestamp, id)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Timestamp < out[i].Timestamp ||
				(out[j].Timestamp == out[i].Timestamp && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type mockTaskRepo struct {
	CreateFn           func(ctx context.Context, task *model.Task) error
	GetByIDFn          func(ctx context.Context, id string) (*model.Task, error)
	SetCompleteFn      func(ctx context.Context, id string) error
	InProgressFn       func(ctx context.Context, userID int64) ([]model.Task, error)
	InProgressByNameFn func(ctx context.Context, userID int64, name string) (*model.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	return m.CreateFn(ctx, task)
}
func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockTaskRepo) SetComplete(ctx context.Context, id string) error {
	return m.SetCompleteFn(ctx, id)
}
func (m *mockTaskRepo) InProgress(ctx context.Context, userID int64) ([]model.Task, error) {
	return m.InProgressFn(ctx, userID)
}
func (m *mockTaskRepo) InProgressByName(ctx context.Context, userID int64, name string) (*model.Task, error) {
	return m.InProgressByNameFn(ctx, userID, name)
}

// mockPublisher records published events and hands out sequential ids.
type mockPublisher struct {
	published []queue.TaskEvent
	nextID    int
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.TaskEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.published = append(m.published, event)
	m.nextID++
	return fmt.Sprintf("1700000000000-%d", m.nextID), nil
}

// mockNotifier records Notify calls.
type mockNotifier struct {
	calls []notifyCall
	err   error
}

type notifyCall struct {
	UserID  int64
	Name    string
	Payload interface{}
}

func (m *mockNotifier) Notify(ctx context.Context, userID int64, name string, payload interface{}) error {
	m.calls = append(m.calls, notifyCall{UserID: userID, Name: name, Payload: payload})
	return m.err
}

// Compile-time interface checks
var (
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.FollowRepository       = (*mockFollowRepo)(nil)
	_ repository.PostRepository         = (*mockPostRepo)(nil)
	_ repository.MessageRepository      = (*mockMessageRepo)(nil)
	_ repository.NotificationRepository = (*mockNotificationRepo)(nil)
	_ repository.TaskRepository         = (*mockTaskRepo)(nil)
	_ queue.Publisher                   = (*mockPublisher)(nil)
)
