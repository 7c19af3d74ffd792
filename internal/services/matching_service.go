package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// Company names shorter than this match too much ("X", "Go").
const minCompanyNameLen = 3

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// FindCompanyFromEmail matches an email to a tracked Company by subject,
// sender display name, then sender domain. It returns nil when nothing
// matches.
func (s *MatcherService) FindCompanyFromEmail(ctx context.Context, subject, rawSender string) (*models.Company, error) {
	// "Stripe Recruiting <jobs@stripe.com>" -> name="stripe recruiting", addr="jobs@stripe.com"
	senderName, senderAddr := "", strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(parsed.Name)
		senderAddr = strings.ToLower(parsed.Address)
	}
	subjectLower := strings.ToLower(subject)

	domain := ""
	if parts := strings.Split(senderAddr, "@"); len(parts) == 2 {
		domain = parts[1]
	}

	// TODO: cache companies in memory once the table outgrows a single scan per email
	var companies []models.Company
	if err := s.DB.WithContext(ctx).Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	for i := range companies {
		name := strings.ToLower(companies[i].Name)
		if len(name) < minCompanyNameLen {
			continue
		}
		if strings.Contains(subjectLower, name) ||
			(senderName != "" && strings.Contains(senderName, name)) ||
			(domain != "" && strings.Contains(domain, strings.ReplaceAll(name, " ", ""))) {
			return &companies[i], nil
		}
	}
	return nil, nil
}
