package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/internal/reminder"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Subjects per email type
const (
	SubjectDueSoon     = "Payment Reminder – Due Soon"
	SubjectOverdue     = "Overdue Payment Reminder"
	SubjectFinalNotice = "Final Payment Notice"
)

// SubjectFor returns the subject line used for a sendable decision
func SubjectFor(decision reminder.Decision) string {
	switch decision {
	case reminder.DueSoon:
		return SubjectDueSoon
	case reminder.Overdue:
		return SubjectOverdue
	case reminder.FinalNotice:
		return SubjectFinalNotice
	default:
		return ""
	}
}

// PlainTextFallback is the text/plain part sent alongside the HTML body
const PlainTextFallback = "Please view this email in an HTML-capable email client."

// Message is a rendered reminder ready for a transport
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

type templateData struct {
	Title        string
	HeaderColor  string
	FromName     string
	Year         int
	BorrowerName string
	Amount       string
	DueDate      string
	DaysUntilDue int
	DaysOverdue  int
	Final        bool
}

// Renderer turns a reminder decision into message content
type Renderer struct {
	dueSoon *template.Template
	overdue *template.Template
}

func NewRenderer() (*Renderer, error) {
	dueSoon, err := template.ParseFS(templateFS, "templates/layout.html", "templates/due_soon.html")
	if err != nil {
		return nil, fmt.Errorf("parse due soon template: %w", err)
	}

	overdue, err := template.ParseFS(templateFS, "templates/layout.html", "templates/overdue.html")
	if err != nil {
		return nil, fmt.Errorf("parse overdue template: %w", err)
	}

	return &Renderer{dueSoon: dueSoon, overdue: overdue}, nil
}

// Render builds the message for a sendable decision. today is the run's
// calendar date and drives the day counts shown to the borrower.
func (r *Renderer) Render(decision reminder.Decision, loan *domain.Loan, settings *domain.ReminderSettings, today time.Time) (*Message, error) {
	data := templateData{
		FromName:     settings.FromName,
		Year:         today.Year(),
		BorrowerName: loan.BorrowerName,
		Amount:       FormatAmount(loan.Currency, loan.Amount),
		DueDate:      utils.CivilDate(loan.DueDate).Format("Monday, January 2, 2006"),
	}

	var tmpl *template.Template

	switch decision {
	case reminder.DueSoon:
		tmpl = r.dueSoon
		data.Title = "Payment Reminder"
		data.HeaderColor = "#1e293b"
		data.DaysUntilDue = utils.DaysBetween(today, loan.DueDate)
	case reminder.Overdue:
		tmpl = r.overdue
		data.Title = "Overdue Payment Reminder"
		data.HeaderColor = "#334155"
		data.DaysOverdue = reminder.DaysOverdue(loan, today)
	case reminder.FinalNotice:
		tmpl = r.overdue
		data.Title = "Final Payment Notice"
		data.HeaderColor = "#7f1d1d"
		data.DaysOverdue = reminder.DaysOverdue(loan, today)
		data.Final = true
	default:
		return nil, fmt.Errorf("no email for decision %s", decision)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}

	return &Message{
		From:    settings.Sender(),
		To:      strings.TrimSpace(loan.BorrowerEmail),
		Subject: SubjectFor(decision),
		HTML:    buf.String(),
		Text:    PlainTextFallback,
	}, nil
}

// FormatAmount renders "USD 1,500.50" style amounts. Whole amounts drop the
// fraction.
func FormatAmount(currency string, amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	var grouped strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(c)
	}

	out := sign + grouped.String()
	if hasFrac {
		out += "." + frac
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}
