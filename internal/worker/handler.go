package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"microblog/internal/mail"
	"microblog/internal/queue"
	"microblog/internal/repository"
)

// ProgressReporter records job progress and publishes it to the owning user
// as a coalesced notification. Reporting 100 marks the task row complete.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, taskID string, userID int64, progress int) error
}

// ArchiveStore uploads an export archive and returns a download URL.
// Nil when no object storage is configured; exports then ship as mail
// attachments only.
type ArchiveStore interface {
	Put(ctx context.Context, userID int64, data []byte, contentType string) (string, error)
}

// Handler executes background jobs read from the task stream.
type Handler struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	progress ProgressReporter
	mailer   mail.Mailer
	archive  ArchiveStore // Can be nil if object storage not wired
}

// NewHandler creates a new job handler.
func NewHandler(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	progress ProgressReporter,
	mailer mail.Mailer,
) *Handler {
	return &Handler{
		userRepo: userRepo,
		postRepo: postRepo,
		progress: progress,
		mailer:   mailer,
	}
}

// SetArchiveStore sets the archive store (optional, for download links).
func (h *Handler) SetArchiveStore(store ArchiveStore) {
	h.archive = store
}

// HandleTask routes a job to the appropriate handler based on name.
// The message ID is the job's task id.
func (h *Handler) HandleTask(ctx context.Context, msg queue.Message) error {
	startTime := time.Now()
	var err error

	switch msg.Event.Name {
	case queue.TaskExportPosts:
		err = h.exportPosts(ctx, msg.ID, msg.Event.UserID)
	default:
		log.Printf("[Worker] Unknown task name: %s", msg.Event.Name)
		return fmt.Errorf("unknown task name: %s", msg.Event.Name)
	}

	if err != nil {
		log.Printf("[Worker] HandleTask FAILED: name=%s task=%s duration=%v err=%v",
			msg.Event.Name, msg.ID, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleTask OK: name=%s task=%s duration=%v",
		msg.Event.Name, msg.ID, time.Since(startTime))
	return nil
}

// exportedPost is one entry in the archive a user downloads.
type exportedPost struct {
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// exportPosts collects every post the user ever wrote, oldest first, and
// mails them the archive. Progress is reported per post so the client can
// render a live progress bar.
func (h *Handler) exportPosts(ctx context.Context, taskID string, userID int64) (err error) {
	// The task must end at progress 100 no matter how the job exits, or the
	// user could never launch another export. Uses a fresh context because
	// the job's own context may already be cancelled.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Worker] ExportPosts PANIC: task=%s user=%d err=%v", taskID, userID, r)
			err = fmt.Errorf("export posts panicked: %v", r)
		}
		finalizeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if perr := h.progress.ReportProgress(finalizeCtx, taskID, userID, 100); perr != nil {
			log.Printf("[Worker] ExportPosts finalize FAILED: task=%s err=%v", taskID, perr)
		}
	}()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := h.progress.ReportProgress(ctx, taskID, userID, 0); err != nil {
		log.Printf("[Worker] ExportPosts: progress report failed: %v", err)
	}

	posts, err := h.postRepo.AllByUserAsc(ctx, userID)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}

	exported := make([]exportedPost, 0, len(posts))
	for i, p := range posts {
		exported = append(exported, exportedPost{Body: p.Body, Timestamp: p.CreatedAt})

		progress := (i + 1) * 100 / len(posts)
		if progress >= 100 {
			// 100 is reserved for the finalizer
			progress = 99
		}
		if err := h.progress.ReportProgress(ctx, taskID, userID, progress); err != nil {
			log.Printf("[Worker] ExportPosts: progress report failed: %v", err)
		}
	}

	archive, err := json.MarshalIndent(map[string]interface{}{"posts": exported}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	msg := &mail.Message{
		To:       []string{user.Email},
		Subject:  "Your blog posts",
		TextBody: fmt.Sprintf("Dear %s,\n\nPlease find attached the archive of your posts that you requested.\n", user.Username),
		Attachments: []mail.Attachment{
			{Name: "posts.json", ContentType: "application/json", Data: archive},
		},
	}

	if h.archive != nil {
		url, err := h.archive.Put(ctx, userID, archive, "application/json")
		if err != nil {
			// Attachment still reaches the user, so a storage outage is
			// not fatal to the export.
			log.Printf("[Worker] ExportPosts: archive upload failed: %v", err)
		} else {
			msg.TextBody += fmt.Sprintf("\nThe archive is also available for download for the next 24 hours:\n%s\n", url)
		}
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send export mail: %w", err)
	}

	log.Printf("[Worker] ExportPosts DONE: task=%s user=%d posts=%d", taskID, userID, len(exported))
	return nil
}
