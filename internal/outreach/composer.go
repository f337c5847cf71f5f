package outreach

import (
	"html/template"
	"strings"
)

// emailTemplate is the self-contained outreach email body. The candidate name
// and job title are always present; the call-to-action link renders only when
// an artifact URL was supplied.
var emailTemplate = template.Must(template.New("outreach").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937; line-height: 1.5;">
    <p>Dear Hiring Team,</p>
    <p>
      My name is <strong>{{.CandidateName}}</strong> and I am reaching out regarding
      the <strong>{{.JobTitle}}</strong> position. I believe my background is a strong
      match and I would welcome the opportunity to discuss it further.
    </p>
{{- if .ArtifactURL}}
    <p>
      <a href="{{.ArtifactURL}}" style="display: inline-block; padding: 10px 18px; background-color: #2563eb; color: #ffffff; text-decoration: none; border-radius: 6px;">View my resume</a>
    </p>
{{- end}}
    <p>Thank you for your time and consideration.</p>
    <p>Best regards,<br>{{.CandidateName}}</p>
  </body>
</html>
`))

type emailData struct {
	CandidateName string
	JobTitle      string
	ArtifactURL   string
}

// ComposeOutreachEmail builds the HTML body for one outreach email. It is a
// pure function and does not fail for well-formed input; empty optional
// fields simply omit their markup.
func ComposeOutreachEmail(candidateName, jobTitle, artifactURL string) string {
	var buf strings.Builder
	data := emailData{
		CandidateName: candidateName,
		JobTitle:      jobTitle,
		ArtifactURL:   strings.TrimSpace(artifactURL),
	}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		// The template is static and the data is plain strings; execution
		// cannot fail at runtime.
		return ""
	}
	return buf.String()
}
