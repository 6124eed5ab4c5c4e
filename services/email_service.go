package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// EmailService handles sending transactional emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOrDefault("SMTP_FROM", "noreply@learnhub.app"),
		appURL:   getEnvOrDefault("APP_URL", "http://localhost:3000"),
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendReceiptEmail sends a purchase receipt after a successful
// enrollment. Callers treat a failure here as best-effort.
func (e *EmailService) SendReceiptEmail(toEmail, userName, courseTitle string, amount float64, transactionID string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping receipt for %s (transaction %s)", toEmail, transactionID)
		return fmt.Errorf("SMTP not configured")
	}

	subject := fmt.Sprintf("Receipt for %s - LearnHub", courseTitle)
	body := e.buildReceiptEmailBody(userName, courseTitle, amount, transactionID)

	return e.sendEmail(toEmail, subject, body)
}

// buildReceiptEmailBody creates the HTML email body for a purchase receipt
func (e *EmailService) buildReceiptEmailBody(userName, courseTitle string, amount float64, transactionID string) string {
	if userName == "" {
		userName = "Student"
	}

	courseLink := fmt.Sprintf("%s/my-courses", e.appURL)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Purchase Receipt - LearnHub</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
        }
        .logo {
            text-align: center;
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 2px solid #1a4d80;
        }
        .logo h1 {
            color: #1a4d80;
            font-size: 28px;
            margin: 0;
            letter-spacing: -0.5px;
        }
        h2 {
            color: #1a4d80;
            margin-top: 0;
        }
        .receipt {
            background-color: #f9f9f9;
            border-radius: 6px;
            padding: 20px;
            margin: 20px 0;
        }
        .receipt table {
            width: 100%%;
            border-collapse: collapse;
        }
        .receipt td {
            padding: 8px 0;
            border-bottom: 1px solid #eee;
        }
        .receipt td:last-child {
            text-align: right;
            font-weight: 600;
        }
        .button {
            display: inline-block;
            background-color: #1a4d80;
            color: #ffffff !important;
            padding: 14px 28px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 600;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
        .footer a {
            color: #1a4d80;
            text-decoration: none;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">
            <h1>LearnHub</h1>
        </div>

        <h2>Thank you for your purchase!</h2>

        <p>Hello %s,</p>

        <p>Your enrollment is confirmed. Here is your receipt:</p>

        <div class="receipt">
            <table>
                <tr><td>Course</td><td>%s</td></tr>
                <tr><td>Amount</td><td>%.2f</td></tr>
                <tr><td>Transaction ID</td><td>%s</td></tr>
                <tr><td>Date</td><td>%s</td></tr>
            </table>
        </div>

        <p style="text-align: center;">
            <a href="%s" class="button">Go to My Courses</a>
        </p>

        <div class="footer">
            <p><strong>LearnHub</strong></p>
            <p><a href="%s">%s</a></p>
            <p style="margin-top: 15px; color: #999;">
                Keep this email for your records.
            </p>
        </div>
    </div>
</body>
</html>`, userName, courseTitle, amount, transactionID, time.Now().Format("January 2, 2006"), courseLink, e.appURL, e.appURL)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	// Build the email message with proper headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("LearnHub <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "LearnHub Mailer"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	_, err = w.Write([]byte(message.String()))
	if err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Receipt email sent successfully to: %s", to)
	return nil
}
