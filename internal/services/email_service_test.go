package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

type fakeAnalyzer struct {
	answer   string
	err      error
	roleIdx  int
	roleAsks int
}

func (f *fakeAnalyzer) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error) {
	return f.answer, f.err
}

func (f *fakeAnalyzer) IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int {
	f.roleAsks++
	return f.roleIdx
}

func message(id, from, subject, body string) *gmail.Message {
	return &gmail.Message{
		Id: id,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
			},
			Body: &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(body))},
		},
	}
}

func newEmailFixture(t *testing.T, analyzer *fakeAnalyzer) (*EmailService, *JobService) {
	db := setupTestDB(t)
	jobs := NewJobService(db)
	return NewEmailService(db, analyzer, nil, NewMatcherService(db), jobs, 0), jobs
}

func TestEmailService_ProcessNormalizesLLMStatus(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: `{"status":"OFFER","summary":"They made an offer"}`}
	svc, jobs := newEmailFixture(t, analyzer)
	job := createJob(t, jobs, "Stripe", "Backend Engineer", "interview")

	svc.processSingleEmail(context.Background(), message("m1", "jobs@stripe.com", "Good news", "We are pleased..."))

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	events, err := jobs.ListEvents(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventEmailUpdate, events[0].EventType)
	assert.Contains(t, events[0].Details, "They made an offer")
	assert.Zero(t, analyzer.roleAsks)
}

func TestEmailService_ProcessSkipsNoChange(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: `{"status":"NO_CHANGE","summary":"ack"}`}
	svc, jobs := newEmailFixture(t, analyzer)
	job := createJob(t, jobs, "Stripe", "Backend Engineer", "applied")

	svc.processSingleEmail(context.Background(), message("m1", "jobs@stripe.com", "Thanks for applying", "..."))

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, got.Status)
}

func TestEmailService_ProcessDisambiguatesWithLLM(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: `{"status":"INTERVIEWING"}`, roleIdx: 1}
	svc, jobs := newEmailFixture(t, analyzer)
	a := createJob(t, jobs, "Hooli", "Frontend", "applied")
	b := createJob(t, jobs, "Hooli", "Backend", "applied")

	svc.processSingleEmail(context.Background(), message("m1", "Hooli Talent <t@hooli.xyz>", "Interview invite", "..."))

	assert.Equal(t, 1, analyzer.roleAsks)
	gotA, _ := jobs.GetJob(context.Background(), a.ID)
	gotB, _ := jobs.GetJob(context.Background(), b.ID)
	assert.Equal(t, models.StatusApplied, gotA.Status)
	assert.Equal(t, models.StatusInterview, gotB.Status)
}

func TestEmailService_ProcessIgnoresClosedAndUnknownCompanies(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: `{"status":"APPLIED"}`}
	svc, jobs := newEmailFixture(t, analyzer)
	job := createJob(t, jobs, "Stripe", "Backend Engineer", "rejected")

	svc.processSingleEmail(context.Background(), message("m1", "jobs@stripe.com", "Re: role", "..."))
	svc.processSingleEmail(context.Background(), message("m2", "someone@example.com", "Newsletter", "..."))

	got, _ := jobs.GetJob(context.Background(), job.ID)
	assert.Equal(t, models.StatusClosed, got.Status)
}

func TestEmailService_ProcessLLMErrorLeavesJob(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("quota")}
	svc, jobs := newEmailFixture(t, analyzer)
	job := createJob(t, jobs, "Stripe", "Backend Engineer", "applied")

	svc.processSingleEmail(context.Background(), message("m1", "jobs@stripe.com", "Update", "..."))

	got, _ := jobs.GetJob(context.Background(), job.ID)
	assert.Equal(t, models.StatusApplied, got.Status)
}

func TestEmailService_ProcessLogsJobLookupFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: `{"status":"INTERVIEWING"}`}
	svc, jobs := newEmailFixture(t, analyzer)
	createJob(t, jobs, "Stripe", "Backend Engineer", "applied")
	require.NoError(t, svc.DB.Migrator().DropTable(&models.Job{}))

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	svc.processSingleEmail(context.Background(), message("m1", "jobs@stripe.com", "Interview invite", "..."))

	assert.Contains(t, buf.String(), "job lookup failed")
	assert.NotContains(t, buf.String(), "no open applications")
}

func TestEmailService_UpdateUserHistoryIDReportsFailure(t *testing.T) {
	svc, _ := newEmailFixture(t, &fakeAnalyzer{})
	user := models.User{Email: "me@example.com"}
	require.NoError(t, svc.DB.Create(&user).Error)

	require.NoError(t, svc.updateUserHistoryID(context.Background(), user.ID, 42))
	var got models.User
	require.NoError(t, svc.DB.First(&got, user.ID).Error)
	assert.EqualValues(t, 42, got.LastHistoryID)

	require.NoError(t, svc.DB.Migrator().DropTable(&models.User{}))
	assert.Error(t, svc.updateUserHistoryID(context.Background(), user.ID, 43))
}

func TestShortenSubject(t *testing.T) {
	assert.Equal(t, "Short", shortenSubject("Short"))

	long := strings.Repeat("é", logSubjectWidth+5)
	got := shortenSubject(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", logSubjectWidth)+"...", got)
}

func TestGetEmailBody_PrefersPlainText(t *testing.T) {
	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }
	msg := &gmail.Message{Payload: &gmail.MessagePart{
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: enc("<p>html</p>")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("plain")}},
		},
	}}
	assert.Equal(t, "plain", getEmailBody(msg))

	msg.Payload.Parts = msg.Payload.Parts[:1]
	assert.Equal(t, "<p>html</p>", getEmailBody(msg))

	assert.Equal(t, "", getEmailBody(&gmail.Message{}))
	assert.Empty(t, parseHeaders(&gmail.Message{}))
}

func TestIsHistoryExpiredError(t *testing.T) {
	assert.True(t, isHistoryExpiredError(&googleapi.Error{Code: 404}))
	assert.False(t, isHistoryExpiredError(&googleapi.Error{Code: 500}))
	assert.False(t, isHistoryExpiredError(errors.New("boom")))
}

func TestRetry_StopsOnExpiredHistory(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, 0, func() error {
		calls++
		return &googleapi.Error{Code: 404}
	})
	assert.Equal(t, 1, calls)
	assert.True(t, isHistoryExpiredError(err))
}

func TestRetry_WrapsLastError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := retry(context.Background(), 2, 0, func() error {
		calls++
		return boom
	})
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, boom)
}

func TestLLMHelpers(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
	assert.Equal(t, 1, parseRoleIndex(" 1\n", 3))
	assert.Equal(t, -1, parseRoleIndex("3", 3))
	assert.Equal(t, -1, parseRoleIndex("the second", 3))
}
