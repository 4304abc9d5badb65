package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttpl "text/template"
	"time"
)

// EscalationVars son las variables del aviso de escalamiento de ticket.
type EscalationVars struct {
	TicketID        string
	Title           string
	Priority        string
	Level           int
	ResolutionDueAt time.Time
	Tenant          string
}

const escalationText = `Ticket {{.TicketID}} escalated to level {{.Level}}.

Title:    {{.Title}}
Priority: {{.Priority}}
Due:      {{.ResolutionDueAt.Format "2006-01-02 15:04 MST"}}
Tenant:   {{.Tenant}}
`

const escalationHTML = `<p>Ticket <b>{{.TicketID}}</b> escalated to level <b>{{.Level}}</b>.</p>
<ul>
<li>Title: {{.Title}}</li>
<li>Priority: {{.Priority}}</li>
<li>Due: {{.ResolutionDueAt.Format "2006-01-02 15:04 MST"}}</li>
<li>Tenant: {{.Tenant}}</li>
</ul>`

var (
	escalationTextTpl = texttpl.Must(texttpl.New("escalation_txt").Parse(escalationText))
	escalationHTMLTpl = template.Must(template.New("escalation_html").Parse(escalationHTML))
)

// RenderEscalation renderiza subject, html y texto del aviso.
func RenderEscalation(v EscalationVars) (subject, html, text string, err error) {
	var hb, tb bytes.Buffer
	if err = escalationHTMLTpl.Execute(&hb, v); err != nil {
		return "", "", "", err
	}
	if err = escalationTextTpl.Execute(&tb, v); err != nil {
		return "", "", "", err
	}
	subject = fmt.Sprintf("[%s] Ticket escalated (level %d): %s", v.Priority, v.Level, v.Title)
	return subject, hb.String(), tb.String(), nil
}

// SendEscalation renderiza y envía el aviso.
func SendEscalation(s Sender, to string, v EscalationVars) error {
	subject, html, text, err := RenderEscalation(v)
	if err != nil {
		return err
	}
	return s.Send(to, subject, html, text)
}
