package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	emailScope      = "https://communication.azure.com//.default"
	emailAPIVersion = "2023-03-31"
)

// EmailService sends mail through the Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates a new EmailService instance.
// A nil cred falls back to DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential) (*EmailService, error) {
	endpoint, err := endpointFromEnv("COMMUNICATION_SERVICES_ENDPOINT")
	if err != nil {
		return nil, err
	}
	sender := envOrDefault("SENDER_EMAIL", "")
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		if cred, err = newDefaultAzureCredential(); err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   strings.TrimRight(endpoint.url, "/"),
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

// SendEmail sends an HTML email. The service answers 202 once the message is queued.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{emailScope}})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	msg := emailRequest{
		SenderAddress: s.sender,
		Content:       emailContent{Subject: subject, HTML: body},
	}
	for _, addr := range to {
		msg.Recipients.To = append(msg.Recipients.To, emailAddress{Address: addr})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=%s", s.endpoint, emailAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(detail))
	}

	slog.Info("email sent successfully", "recipients", len(to), "subject", subject)
	return nil
}

// SendErrorEmail sends an email listing the rows an import rejected.
func (s *EmailService) SendErrorEmail(ctx context.Context, recipients []string, errors []string) error {
	return s.SendEmail(ctx, recipients, "Cashflow - Import Failed", RenderErrorBody(errors))
}

// SendDigestEmail sends the nightly summary of a household month.
func (s *EmailService) SendDigestEmail(ctx context.Context, recipients []string, digest Digest) error {
	subject := fmt.Sprintf("Cashflow - %s outlook: %s", digest.Month, digest.RiskLevel)
	return s.SendEmail(ctx, recipients, subject, RenderDigestBody(digest))
}
