package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	log "github.com/sirupsen/logrus"

	"rpsarena/internal/models"
)

// EmailSender is the part of the SES client used to send mail
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    EmailSender
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.WithFields(log.Fields{"region": awsRegion, "from": fromEmail, "from_name": fromName}).
			Debug("Initializing email service with AWS SES")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Infof("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

// NewEmailServiceWithClient creates an enabled email service on an existing client
func NewEmailServiceWithClient(client EmailSender, fromEmail, fromName string, debug bool) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendStatsDigest mails the current scoreboard to an administrator
func (s *EmailService) SendStatsDigest(ctx context.Context, toEmail string, stats *models.Stats, now time.Time) error {
	if !s.enabled {
		log.Debugf("Skipping email send (service disabled): stats digest to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("RPS Arena daily digest for %s", now.Format("2006-01-02"))
	htmlBody, textBody := renderDigest(stats)

	if s.debug {
		log.WithFields(log.Fields{"to": toEmail, "html_bytes": len(htmlBody), "text_bytes": len(textBody)}).
			Debug("Sending stats digest")
	}

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func renderDigest(stats *models.Stats) (string, string) {
	t := stats.Total

	var text strings.Builder
	fmt.Fprintf(&text, "Finished games: %d\n", t.TotalGames)
	fmt.Fprintf(&text, "Rounds won by players: %d\n", t.TotalPlayerWins)
	fmt.Fprintf(&text, "Rounds won by AI: %d\n", t.TotalAIWins)
	fmt.Fprintf(&text, "Drawn rounds: %d\n\n", t.TotalDraws)
	text.WriteString("By opponent:\n")

	var rows strings.Builder
	for _, o := range stats.ByAI {
		name := o.Name
		if o.NameEn != "" {
			name = fmt.Sprintf("%s (%s)", o.Name, o.NameEn)
		}
		fmt.Fprintf(&text, "- %s [%s]: %d games, player win rate %.1f%%\n", name, o.Difficulty, o.GamesPlayed, o.PlayerWinRate)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%.1f%%</td></tr>\n",
			html.EscapeString(name), html.EscapeString(string(o.Difficulty)), o.GamesPlayed, o.PlayerWins, o.AIWins, o.Draws, o.PlayerWinRate)
	}
	text.WriteString("\n---\nThis is an automated email from RPS Arena. Please do not reply.\n")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Daily Digest</h1>
		</div>
		<div class="content">
			<p>Finished games: <strong>%d</strong></p>
			<p>Rounds won by players: %d &middot; by AI: %d &middot; drawn: %d</p>
			<table>
				<tr><th>Opponent</th><th>Difficulty</th><th>Games</th><th>Player</th><th>AI</th><th>Draws</th><th>Player win rate</th></tr>
				%s
			</table>
		</div>
		<div class="footer">
			<p>This is an automated email from RPS Arena. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, t.TotalGames, t.TotalPlayerWins, t.TotalAIWins, t.TotalDraws, rows.String())

	return htmlBody, text.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Debugf("SES message ID: %s", *result.MessageId)
	}

	log.Infof("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
