package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/MrModa2442/YouTube-comment-check/internal/models"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"
)

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

func (s *Sender) SendReport(report *models.EmailReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if len(report.Results) == 0 {
		return nil // Nothing new to report
	}

	subject := fmt.Sprintf("Music Comments Found - %d New on Video %s (%s)",
		len(report.Results), report.VideoID, report.Date.Format("Jan 2, 2006"))

	body, err := s.generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

const reportTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>New music-related comments on video {{.VideoID}}</h2>
  <p>{{.CommentsFetched}} comments scanned on {{.Date.Format "Jan 2, 2006 15:04"}}.</p>
  {{range .Results}}
  <div style="border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin-bottom: 10px;">
    <p style="margin: 0 0 6px 0;"><strong>{{.Username}}</strong> at <strong>{{.Timestamp}}</strong></p>
    <p style="margin: 0 0 6px 0;">{{.Comment}}</p>
    {{if .ClipURL}}<a href="{{.ClipURL}}">Jump to this moment</a>{{end}}
  </div>
  {{end}}
</body>
</html>`

func (s *Sender) generateEmailBody(report *models.EmailReport) (string, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}
