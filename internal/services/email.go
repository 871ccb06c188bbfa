package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/utils"
)

type EmailService interface {
	SendMagicLink(ctx context.Context, toEmail, nickname, link string) error
}

type emailService struct {
	log       *logger.Logger
	client    *http.Client
	apiKey    string
	baseURL   string
	fromEmail string
	fromName  string
	retries   int
}

// NewEmailService talks to the SendGrid v3 REST API directly. Without an API
// key it degrades to logging the link, which keeps local development
// mail-server free.
func NewEmailService(baseLog *logger.Logger) EmailService {
	log := baseLog.With("service", "EmailService")
	return &emailService{
		log:       log,
		client:    &http.Client{Timeout: 30 * time.Second},
		apiKey:    strings.TrimSpace(utils.GetEnv("SENDGRID_API_KEY", "", log)),
		baseURL:   utils.GetEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com", log),
		fromEmail: utils.GetEnv("MAIL_FROM_EMAIL", "no-reply@lunchmate.app", log),
		fromName:  utils.GetEnv("MAIL_FROM_NAME", "런치메이트", log),
		retries:   utils.GetEnvAsInt("SENDGRID_MAX_RETRIES", 3, log),
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (es *emailService) SendMagicLink(ctx context.Context, toEmail, nickname, link string) error {
	if es.apiKey == "" {
		es.log.Warn("SENDGRID_API_KEY not set, logging magic link instead of sending", "email", toEmail, "link", link)
		return nil
	}

	greeting := "안녕하세요"
	if nickname != "" {
		greeting = fmt.Sprintf("안녕하세요, %s님", nickname)
	}
	body := fmt.Sprintf("%s!\n\n아래 링크로 로그인해주세요. 링크는 15분 동안 유효합니다.\n\n%s\n", greeting, link)

	payload := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: toEmail}}}},
		From:             sgAddress{Email: es.fromEmail, Name: es.fromName},
		Subject:          "런치메이트 로그인 링크",
		Content:          []sgContent{{Type: "text/plain", Value: body}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= es.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		lastErr = es.post(ctx, raw)
		if lastErr == nil {
			return nil
		}
		es.log.Warn("Magic link mail attempt failed", "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("send magic link mail: %w", lastErr)
}

func (es *emailService) post(ctx context.Context, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, es.baseURL+"/v3/mail/send", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+es.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := es.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, string(snippet))
}
