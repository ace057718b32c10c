package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportAdd(t *testing.T) {
	var r Report
	assert.True(t, r.IsEmpty())

	r.Add("")
	assert.True(t, r.IsEmpty())

	r.Add("Tx. Failed Receipt Report", "ID 1 :: abc")
	assert.False(t, r.IsEmpty())
	assert.Len(t, r.Sections, 1)
}

func TestRenderReportEscapes(t *testing.T) {
	r := Report{Title: "Status <Report>"}
	r.Add("Section", "<script>alert(1)</script>")

	html, err := renderReport(r)
	require.NoError(t, err)
	assert.Contains(t, html, "Status &lt;Report&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("bot@example.com", []string{"a@example.com", "b@example.com"}, "Report", "<p>hi</p>")

	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Report\r\n")
	assert.Contains(t, msg, "\r\n\r\n<p>hi</p>")
}

func TestSMTPConfigEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{Host: "smtp"}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp", To: []string{"ops@example.com"}}.Enabled())
}

func TestLogSender(t *testing.T) {
	var lines []string
	sender := LogSender{Logf: func(template string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(template, args...))
	}}

	require.NoError(t, sender.SendReport(context.Background(), Report{Title: "empty"}))
	assert.Empty(t, lines)

	r := Report{Title: "Report"}
	r.Add("Non-Valid Receipt Report :: 3")
	require.NoError(t, sender.SendReport(context.Background(), r))
	assert.Equal(t, []string{"Report :: Non-Valid Receipt Report :: 3 :: "}, lines)
}

func TestSMTPServiceSkipsEmptyReport(t *testing.T) {
	svc := NewSMTPService(SMTPConfig{Host: "127.0.0.1", Port: "1"})
	assert.NoError(t, svc.SendReport(context.Background(), Report{Title: "nothing"}))
}
