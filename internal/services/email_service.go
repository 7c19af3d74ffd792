package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// EmailAnalyzer is the part of the LLM the watcher needs.
type EmailAnalyzer interface {
	AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error)
	IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int
}

const (
	fullSyncQuery   = "subject:(application OR interview OR update OR offer OR rejected OR status) newer_than:7d"
	fullSyncMax     = 50
	syncTimeout     = 2 * time.Minute
	llmNoChange     = "NO_CHANGE"
	llmUnknown      = "UNKNOWN"
	logSubjectWidth = 20
)

type EmailService struct {
	DB             *gorm.DB
	Analyzer       EmailAnalyzer
	MatcherService *MatcherService
	JobService     *JobService
	GmailClient    *gmail.Service
	Interval       time.Duration
}

func NewEmailService(db *gorm.DB, analyzer EmailAnalyzer, gmailClient *gmail.Service, matcher *MatcherService, jobs *JobService, interval time.Duration) *EmailService {
	return &EmailService{
		DB:             db,
		Analyzer:       analyzer,
		GmailClient:    gmailClient,
		MatcherService: matcher,
		JobService:     jobs,
		Interval:       interval,
	}
}

// StartWatcher syncs once immediately and then every Interval until ctx
// is cancelled.
func (s *EmailService) StartWatcher(ctx context.Context) {
	if s.GmailClient == nil || s.Analyzer == nil {
		log.Println("Gmail watcher disabled (no Gmail client or LLM). Check credentials.")
		return
	}

	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.SyncEmails(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SyncEmails(ctx)
			}
		}
	}()
}

// SyncEmails runs one sync cycle: bootstrap or incremental fetch,
// dedupe, process, then store the new history bookmark.
func (s *EmailService) SyncEmails(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, syncTimeout)
	defer cancel()

	log.Println("Email watcher: starting sync cycle")

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user).Error; err != nil {
		user = models.User{Email: "default", LastHistoryID: 0}
		if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
			log.Printf("Email watcher: cannot create user state: %v", err)
			return
		}
	}

	var (
		messages     []*gmail.Message
		newHistoryID uint64
		err          error
	)
	if user.LastHistoryID == 0 {
		log.Println("Email watcher: first run, full bootstrap sync")
		messages, newHistoryID, err = s.performFullSync(ctx)
	} else {
		messages, newHistoryID, err = s.performIncrementalSync(ctx, user.LastHistoryID)
		// Google drops old history; start over from a full sync
		if err != nil && isHistoryExpiredError(err) {
			log.Println("Email watcher: history id expired, falling back to full sync")
			messages, newHistoryID, err = s.performFullSync(ctx)
		}
	}
	if err != nil {
		log.Printf("Email watcher: sync failed: %v", err)
		return
	}

	if len(messages) > 0 {
		log.Printf("Email watcher: processing %d candidate emails", len(messages))
	}
	for _, msg := range messages {
		var count int64
		s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", msg.Id).Count(&count)
		if count > 0 {
			continue
		}
		s.processSingleEmail(ctx, msg)
		s.DB.WithContext(ctx).Create(&models.ProcessedEmail{ID: msg.Id})
	}

	if newHistoryID > user.LastHistoryID {
		if err := s.updateUserHistoryID(ctx, user.ID, newHistoryID); err != nil {
			log.Printf("Email watcher: failed to save history bookmark %d: %v", newHistoryID, err)
			return
		}
		log.Printf("Email watcher: history bookmark at %d", newHistoryID)
	}
}

// performFullSync scans the last 7 days and returns the current history id
// as the new anchor.
func (s *EmailService) performFullSync(ctx context.Context) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListMessagesResponse
	err := retry(ctx, 3, time.Second, func() error {
		var e error
		resp, e = s.GmailClient.Users.Messages.List("me").Q(fullSyncQuery).MaxResults(fullSyncMax).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	profile, err := s.GmailClient.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, err
	}
	return s.expandMessages(ctx, resp.Messages), profile.HistoryId, nil
}

// performIncrementalSync asks only for messages added since startID.
func (s *EmailService) performIncrementalSync(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListHistoryResponse
	err := retry(ctx, 3, time.Second, func() error {
		var e error
		resp, e = s.GmailClient.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	var headers []*gmail.Message
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				headers = append(headers, added.Message)
			}
		}
	}
	return s.expandMessages(ctx, headers), resp.HistoryId, nil
}

func (s *EmailService) expandMessages(ctx context.Context, headers []*gmail.Message) []*gmail.Message {
	var full []*gmail.Message
	for _, h := range headers {
		_ = retry(ctx, 2, 500*time.Millisecond, func() error {
			msg, err := s.GmailClient.Users.Messages.Get("me", h.Id).Context(ctx).Do()
			if err == nil {
				full = append(full, msg)
			}
			return err
		})
	}
	return full
}

type emailAnalysis struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// processSingleEmail matches the email to a job, asks the LLM what it
// means and moves the job to the normalized status.
func (s *EmailService) processSingleEmail(ctx context.Context, msg *gmail.Message) {
	headers := parseHeaders(msg)
	subject := headers["Subject"]
	sender := headers["From"]

	logPrefix := fmt.Sprintf("[Email: %s]", shortenSubject(subject))
	body := getEmailBody(msg)

	company, err := s.MatcherService.FindCompanyFromEmail(ctx, subject, sender)
	if err != nil {
		log.Printf("%s skipped: %v", logPrefix, err)
		return
	}
	if company == nil {
		log.Printf("%s skipped: sender/subject match no tracked company", logPrefix)
		return
	}

	var jobs []models.Job
	err = s.DB.WithContext(ctx).
		Where("company_id = ? AND status <> ?", company.ID, models.StatusClosed).
		Order("id ASC").
		Find(&jobs).Error
	if err != nil {
		log.Printf("%s skipped: job lookup failed: %v", logPrefix, err)
		return
	}
	if len(jobs) == 0 {
		log.Printf("%s skipped: no open applications at %s", logPrefix, company.Name)
		return
	}

	target := &jobs[0]
	if len(jobs) > 1 {
		titles := make([]string, len(jobs))
		for i, j := range jobs {
			titles[i] = j.Title
		}
		idx := s.Analyzer.IdentifyJobRole(ctx, titles, subject, body)
		if idx < 0 || idx >= len(jobs) {
			log.Printf("%s skipped: cannot tell which of %d jobs this is about", logPrefix, len(jobs))
			return
		}
		target = &jobs[idx]
	}

	raw, err := s.Analyzer.AnalyzeEmailStatus(ctx, company.Name, subject, body)
	if err != nil {
		log.Printf("%s skipped: llm analysis error: %v", logPrefix, err)
		return
	}
	var result emailAnalysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("%s skipped: bad llm json: %v (raw: %s)", logPrefix, err, raw)
		return
	}
	if result.Status == llmNoChange || result.Status == llmUnknown || result.Status == "" {
		return
	}

	status := models.NormalizeStatus(result.Status)
	if status == target.Status {
		return
	}

	log.Printf("%s updating job %d: %s -> %s", logPrefix, target.ID, target.Status, status)
	details := fmt.Sprintf("Status changed to %s (%s). Summary: %s", status, result.Status, result.Summary)
	if _, err := s.JobService.UpdateStatus(ctx, target.ID, status, models.EventEmailUpdate, details); err != nil {
		log.Printf("%s update failed: %v", logPrefix, err)
	}
}

// retry runs f with exponential backoff. Expired-history errors return
// immediately so the caller can switch to a full sync.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isHistoryExpiredError(err) {
			return err
		}
		log.Printf("Gmail API error: %v. Retrying in %v", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 404
	}
	return false
}

func (s *EmailService) updateUserHistoryID(ctx context.Context, userID uint, newID uint64) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_history_id", newID)
	if res.Error != nil {
		return fmt.Errorf("save history id for user %d: %w", userID, res.Error)
	}
	return nil
}

// shortenSubject cuts subject to logSubjectWidth runes for log prefixes.
func shortenSubject(subject string) string {
	r := []rune(subject)
	if len(r) <= logSubjectWidth {
		return subject
	}
	return string(r[:logSubjectWidth]) + "..."
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers the top-level body, then text/plain, then text/html.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodeBody(msg.Payload.Body.Data)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	d, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail sometimes omits padding
		d, _ = base64.RawURLEncoding.DecodeString(data)
	}
	return string(d)
}
