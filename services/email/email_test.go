package emailsvc

import (
	"bytes"
	"encoding/json"
	"log"
	"net/mail"
	"sync"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolorganizer/organizer/core"
)

var testConf = &core.Config{
	AppName: "School Organizer",
	Email:   core.EmailConfig{DefaultFromEmail: "noreply@example.com"},
}

func reminder() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Address: "student@example.com"}},
		Subject:      "Essay is due soon",
		TemplateName: "task_reminder",
		TemplateData: map[string]interface{}{
			"Title":        "Essay",
			"CourseName":   "History",
			"Due":          "Mon, 04 Mar 2024 12:00:00 UTC",
			"PendingSteps": []string{"Outline or plan"},
		},
	}
}

func TestConsoleService(t *testing.T) {
	var buf bytes.Buffer
	svc := NewConsoleServiceMock(log.New(&buf, "", 0), testConf)

	svc.SendMessages(reminder(), &core.EmailMessage{Subject: "no recipient", BodyStr: "x"})

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Essay (History) is due at")
	assert.Contains(t, sent[0].TextContent, "[ ] Outline or plan")
	assert.Contains(t, sent[0].HTMLContent, "<li>Outline or plan</li>")

	out := buf.String()
	assert.Contains(t, out, "Subject: [School Organizer] Essay is due soon")
	assert.Contains(t, out, "To: <student@example.com>")
	assert.Contains(t, out, "text/html")
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *recordingLogger) Fatal(msg string, _ ...interface{}) { l.log(msg) }

func TestSendgridService_send(t *testing.T) {
	logger := new(recordingLogger)
	conf := *testConf
	conf.Email.SendgridAPIKey = "SG.key"
	svc := NewSendgridService(logger, &conf).(*sendgridService)

	var got rest.Request
	svc.api = func(req rest.Request) (*rest.Response, error) {
		got = req
		return &rest.Response{StatusCode: 400, Body: "bad request"}, nil
	}

	msg := reminder()
	require.NoError(t, msg.Render(conf.AppName))
	svc.send(*msg)

	assert.Equal(t, "Bearer SG.key", got.Headers["Authorization"])
	assert.Equal(t, "https://api.sendgrid.com/v3/mail/send", got.BaseURL)

	var body struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, "noreply@example.com", body.From.Email)
	assert.Equal(t, "[School Organizer] Essay is due soon", body.Personalizations[0].Subject)
	assert.Len(t, body.Content, 2)

	require.Len(t, logger.msgs, 1)
	assert.Contains(t, logger.msgs[0], "status: 400")
}
