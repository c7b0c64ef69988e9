package resend

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/brk3/habitcal/pkg/habit"
	"github.com/resend/resend-go/v2"
)

type ResendNotifier struct {
	ApiKey string
	Email  string
	From   string
}

const htmlTemplate = `
<p>Habits left for {{.Date}}:</p>
<ul>
{{range .Tasks}}
  <li>{{.}}</li>
{{end}}
</ul>
`

var tmpl = template.Must(template.New("email").Parse(htmlTemplate))

func render(tasks []string, date habit.Date) (string, error) {
	data := struct {
		Tasks []string
		Date  string
	}{
		Tasks: tasks,
		Date:  date.Time().Format("Monday, January 2"),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// subject names the day, saying "today" when date is today.
func subject(count int, date, today habit.Date) string {
	day := "today"
	if date != today {
		day = date.Time().Format("Monday, January 2")
	}
	return fmt.Sprintf("%d habits left for %s", count, day)
}

func (r *ResendNotifier) SendNudge(tasks []string, date habit.Date) error {
	html, err := render(tasks, date)
	if err != nil {
		return err
	}

	from := r.From
	if from == "" {
		from = "onboarding@resend.dev"
	}

	client := resend.NewClient(r.ApiKey)
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{r.Email},
		Subject: subject(len(tasks), date, habit.Today()),
		Html:    html,
	}

	_, err = client.Emails.Send(params)
	return err
}
