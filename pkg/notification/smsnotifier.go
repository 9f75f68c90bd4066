package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SMSConfig holds the SMS provider endpoint configuration. The provider
// exposes a single JSON route that accepts {phone, message} and answers
// {success, error?}.
type SMSConfig struct {
	Endpoint string
	From     string
	APIKey   string
}

// SMSNotifier delivers notices over the SMS provider's HTTP route.
type SMSNotifier struct {
	SMSConfig SMSConfig
	client    *http.Client
}

type smsRequest struct {
	From    string `json:"from,omitempty"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewSMSNotifier(config SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		SMSConfig: config,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SMSNotifier) Send(noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	if notification.To == "" {
		return fmt.Errorf("SMS notification requires 'To' phone number")
	}
	if s.SMSConfig.Endpoint == "" {
		return fmt.Errorf("SMS provider endpoint is not configured")
	}

	body, err := renderTemplate("sms", noticeTemplate.Text, notification.Data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(smsRequest{
		From:    s.SMSConfig.From,
		Phone:   notification.To,
		Message: body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.SMSConfig.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.SMSConfig.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.SMSConfig.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("Failed to reach SMS provider", "err", err)
		return err
	}
	defer resp.Body.Close()

	var result smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("Failed to decode SMS provider response", "err", err)
		return err
	}

	if resp.StatusCode != http.StatusOK || !result.Success {
		if result.Error != "" {
			return fmt.Errorf("SMS provider rejected message: %s", result.Error)
		}
		return fmt.Errorf("SMS provider rejected message with status %d", resp.StatusCode)
	}

	slog.Info("SMS sent", "to", notification.To, "type", noticeType)
	return nil
}
