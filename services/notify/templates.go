package notify

import (
	"bytes"
	"html/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 20px; background-color: #f9fafb; font-family: Arial, sans-serif;">
    <h2 style="color: #111827;">{{.Title}}</h2>
    {{range .Sections}}
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="margin-bottom: 16px;">
        <tr>
            <td style="padding: 8px 12px; background-color: #e5e7eb; font-weight: 600;">{{.Heading}}</td>
        </tr>
        {{range .Lines}}
        <tr>
            <td style="padding: 6px 12px; border-bottom: 1px solid #e5e7eb; white-space: pre-wrap;">{{.}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}
</body>
</html>
`))

func renderReport(report Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
