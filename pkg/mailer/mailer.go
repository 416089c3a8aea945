// Package mailer sends transactional email over the Resend HTTP API.
// Sends are best effort: workflows log failures and move on, a failed mail
// must never roll back the transaction that triggered it.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"festgo.app/configs/configslog"

	"go.uber.org/zap"
)

const resendAPI = "https://api.resend.com/emails"

// Sender is the notification contract the services depend on.
type Sender interface {
	Send(to, subject, body string) error
}

type resendEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Mailer implements Sender against Resend. Without an API key it degrades to
// logging the message, which keeps local development mail-free.
type Mailer struct {
	apiKey string
	from   string
	client *http.Client
}

// New builds a Mailer from RESEND_API_KEY and MAIL_FROM.
func New() *Mailer {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "FestGo <noreply@festgo.app>"
	}
	return &Mailer{
		apiKey: os.Getenv("RESEND_API_KEY"),
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m.apiKey == "" {
		configslog.SLog.Infof("Mock email (no RESEND_API_KEY) to=%s subject=%q", to, subject)
		return nil
	}

	payload, err := json.Marshal(resendEmail{From: m.from, To: to, Subject: subject, Text: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, resendAPI, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		configslog.Log.Warn("Mail provider rejected message",
			zap.Int("status", resp.StatusCode), zap.String("to", to))
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}

var _ Sender = (*Mailer)(nil)

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(to, subject, body string) error

func (f SenderFunc) Send(to, subject, body string) error { return f(to, subject, body) }

// Discard is a Sender that drops every message. Used in tests.
var Discard Sender = SenderFunc(func(string, string, string) error { return nil })
