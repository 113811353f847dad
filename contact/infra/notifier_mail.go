package infra

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"

	"toolkit-gateway/contact/domain"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled é falso quando não há servidor ou destinatário configurado.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier avisa a equipe por SMTP. O conteúdo do usuário é escapado e
// passa pelo sanitizer antes de entrar no corpo HTML.
type MailNotifier struct {
	cfg    MailConfig
	sender mailSender
	policy *bluemonday.Policy
}

func NewMailNotifier(cfg MailConfig) *MailNotifier {
	return &MailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		policy: bluemonday.UGCPolicy(),
	}
}

func (n *MailNotifier) Notify(ctx context.Context, s domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To...)
	m.SetHeader("Reply-To", s.Email)
	m.SetHeader("Subject", "[contact] "+oneLine(s.Subject))
	m.SetBody("text/plain", PlainBody(s))
	m.AddAlternative("text/html", n.HTMLBody(s))
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send contact mail %s: %w", s.ID, err)
	}
	return nil
}

// HTMLBody monta o corpo HTML já sanitizado.
func (n *MailNotifier) HTMLBody(s domain.Submission) string {
	var b strings.Builder
	b.WriteString("<h2>New contact submission</h2><ul>")
	fmt.Fprintf(&b, "<li><b>ID:</b> %s</li>", html.EscapeString(s.ID))
	fmt.Fprintf(&b, "<li><b>From:</b> %s</li>", html.EscapeString(s.Email))
	fmt.Fprintf(&b, "<li><b>Subject:</b> %s</li>", html.EscapeString(s.Subject))
	fmt.Fprintf(&b, "<li><b>Language:</b> %s</li>", html.EscapeString(s.Language))
	fmt.Fprintf(&b, "<li><b>Identity:</b> %s</li>", html.EscapeString(s.Identity))
	b.WriteString("</ul><p>")
	b.WriteString(strings.ReplaceAll(html.EscapeString(s.Message), "\n", "<br>"))
	b.WriteString("</p>")
	return n.policy.Sanitize(b.String())
}

func PlainBody(s domain.Submission) string {
	return fmt.Sprintf("ID: %s\nFrom: %s\nSubject: %s\nLanguage: %s\nIdentity: %s\nCreated: %s\n\n%s\n",
		s.ID, s.Email, s.Subject, s.Language, s.Identity, s.CreatedAt.Format("2006-01-02 15:04:05 MST"), s.Message)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
