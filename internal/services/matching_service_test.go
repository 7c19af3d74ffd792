package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

func TestMatcherService_FindCompanyFromEmail(t *testing.T) {
	db := setupTestDB(t)
	for _, name := range []string{"Stripe", "Go", "Hooli"} {
		require.NoError(t, db.Create(&models.Company{Name: name}).Error)
	}
	m := NewMatcherService(db)
	ctx := context.Background()

	cases := []struct {
		subject, sender, want string
	}{
		{"Update on your application to Stripe", "noreply@greenhouse.io", "Stripe"},
		{"Your application", "Hooli Recruiting <talent@ats.example>", "Hooli"},
		{"Next steps", "jobs@stripe.com", "Stripe"},
		{"Let's go!", "friend@example.com", ""},
	}
	for _, tc := range cases {
		c, err := m.FindCompanyFromEmail(ctx, tc.subject, tc.sender)
		require.NoError(t, err)
		if tc.want == "" {
			assert.Nil(t, c, "subject=%q", tc.subject)
			continue
		}
		require.NotNil(t, c, "subject=%q", tc.subject)
		assert.Equal(t, tc.want, c.Name)
	}
}
