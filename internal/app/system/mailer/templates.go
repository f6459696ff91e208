// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// NotificationEmailData holds data for activity notification emails.
type NotificationEmailData struct {
	SiteName    string
	Recipient   string
	Title       string
	Description string
	Action      string
}

// BuildNotificationEmail creates an activity notification email with both HTML and text bodies.
func BuildNotificationEmail(data NotificationEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("[%s] %s", data.SiteName, data.Title),
		TextBody: buildNotificationText(data),
		HTMLBody: buildNotificationHTML(data),
	}
}

func buildNotificationText(data NotificationEmailData) string {
	var buf bytes.Buffer
	if data.Recipient != "" {
		buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.Recipient))
	}
	buf.WriteString(data.Title + "\n\n")
	if data.Description != "" {
		buf.WriteString(data.Description + "\n\n")
	}
	buf.WriteString(fmt.Sprintf("Sign in to %s to see the full activity history.\n", data.SiteName))
	return buf.String()
}

func buildNotificationHTML(data NotificationEmailData) string {
	tmpl := template.Must(template.New("notification").Parse(notificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const notificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              {{if .Recipient}}
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.Recipient}},
              </p>
              {{end}}
              <p style="margin: 0 0 16px; font-size: 16px; font-weight: 600; color: #1f2937; line-height: 1.5;">
                {{.Title}}
              </p>
              {{if .Description}}
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280; line-height: 1.5;">
                {{.Description}}
              </p>
              {{end}}
              <p style="margin: 0; font-size: 14px; color: #6b7280; line-height: 1.5;">
                Sign in to {{.SiteName}} to see the full activity history.
              </p>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; text-align: center; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af;">
                You received this email because of activity in your thesis group.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
