package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/config"
)

type captureSender struct {
	to, subject, html, text string
}

func (c *captureSender) Send(to, subject, html, text string) error {
	c.to, c.subject, c.html, c.text = to, subject, html, text
	return nil
}

func TestSendEscalation(t *testing.T) {
	cs := &captureSender{}
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := SendEscalation(cs, "agent@acme.test", EscalationVars{
		TicketID: "t-1", Title: "Printer <on fire>", Priority: "urgent", Level: 2,
		ResolutionDueAt: due, Tenant: "acme",
	})
	require.NoError(t, err)
	require.Equal(t, "agent@acme.test", cs.to)
	require.Equal(t, "[urgent] Ticket escalated (level 2): Printer <on fire>", cs.subject)
	require.Contains(t, cs.text, "2026-03-01 12:00 UTC")
	require.Contains(t, cs.html, "Printer &lt;on fire&gt;")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	_, ok := FromConfig(cfg).(NoopSender)
	require.True(t, ok)

	cfg.SMTP.Host = "smtp.acme.test"
	cfg.SMTP.TLS = "ssl"
	s, ok := FromConfig(cfg).(*SMTPSender)
	require.True(t, ok)
	require.Equal(t, 587, s.Port)
	require.True(t, s.dialer().SSL)

	m := s.message("a@b.c", "hi", "<p>x</p>", "x")
	require.Equal(t, []string{"hi"}, m.GetHeader("Subject"))
}
