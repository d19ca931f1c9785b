package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"hanzidrill/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] From Name: %s", fromName)
		log.Printf("[DEBUG] App Base URL: %s", appBaseURL)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		if debug {
			log.Printf("[DEBUG] Failed to load AWS config: %v", err)
		}
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if debug {
		log.Println("[DEBUG] AWS config loaded successfully")
	}

	// Create SES client
	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	if debug {
		log.Println("[DEBUG] SES client created successfully")
	}

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSessionReport mails the learner the per-word scores of a finished review session
func (s *EmailService) SendSessionReport(ctx context.Context, toEmail, toName string, report models.SessionReport) error {
	if s.debug {
		log.Printf("[DEBUG] SendSessionReport called: to=%s, session=%s, words=%d", toEmail, report.SessionID, len(report.Scores))
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): session report to %s", toEmail)
		return nil
	}
	if toEmail == "" {
		if s.debug {
			log.Printf("[DEBUG] Learner %s has no email address, report not sent", toName)
		}
		return nil
	}

	subject, htmlBody, textBody := buildSessionReport(toName, s.appBaseURL, report)

	if s.debug {
		log.Printf("[DEBUG] Sending session report: subject=%s, to=%s", subject, toEmail)
		log.Printf("[DEBUG] HTML body length: %d bytes", len(htmlBody))
		log.Printf("[DEBUG] Text body length: %d bytes", len(textBody))
	}

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// buildSessionReport renders the subject and both bodies of a report email
func buildSessionReport(toName, appBaseURL string, report models.SessionReport) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Hanzi Drill: %d words reviewed", len(report.Scores))

	var rows, lines strings.Builder
	for _, sc := range report.Scores {
		fmt.Fprintf(&rows, "\t\t\t\t<tr><td class=\"char\">%s</td><td>%s</td></tr>\n",
			html.EscapeString(sc.Char), html.EscapeString(sc.ScoreLabel))
		fmt.Fprintf(&lines, "  %s  %s\n", sc.Char, sc.ScoreLabel)
	}

	next := "All due words are done for today."
	if report.ContinuationAvailable {
		next = "More words are due. Start another session to keep going."
	}

	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #c0392b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		td { padding: 4px 12px; }
		.char { font-size: 24px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Review complete</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Here is how your review went:</p>
			<table>
%s			</table>
			<p>%s</p>
			<p><a href="%s">Open Hanzi Drill</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Hanzi Drill. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(toName), rows.String(), next, appBaseURL)

	textBody = fmt.Sprintf(`Hi %s,

Here is how your review went:

%s
%s

Open Hanzi Drill: %s

---
This is an automated email from Hanzi Drill. Please do not reply.
`, toName, lines.String(), next, appBaseURL)

	return subject, htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if s.debug {
		log.Printf("[DEBUG] sendEmail called: to=%s, subject=%s", toEmail, subject)
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] From address: %s", fromAddress)
		log.Printf("[DEBUG] To address: %s", toEmail)
		log.Printf("[DEBUG] Subject: %s", subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if s.debug {
		log.Printf("[DEBUG] Calling SES SendEmail API...")
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug {
		log.Printf("[DEBUG] SES SendEmail succeeded")
		if result.MessageId != nil {
			log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
		}
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
