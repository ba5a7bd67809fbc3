package consent

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/vivabem/vivabem-server/internal/email"
	"github.com/vivabem/vivabem-server/internal/metrics"
	"github.com/vivabem/vivabem-server/internal/report"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

// CaregiverNotifier mails finished reports to the user's caregiver when the
// consent gate allows it. Every failure is logged and swallowed; the report
// pipeline never learns about delivery problems.
type CaregiverNotifier struct {
	consent *Service
	store   *store.Store
	mailer  email.Mailer
	logger  *zap.Logger
}

// NewCaregiverNotifier creates a new notifier. A nil mailer disables delivery.
func NewCaregiverNotifier(consent *Service, st *store.Store, mailer email.Mailer, logger *zap.Logger) *CaregiverNotifier {
	return &CaregiverNotifier{
		consent: consent,
		store:   st,
		mailer:  mailer,
		logger:  logger.Named("notifier"),
	}
}

// Notify implements report.Notifier
func (n *CaregiverNotifier) Notify(ctx context.Context, userID string, rep *report.StructuredReport) {
	caregiver, ok, err := n.consent.Authorized(ctx, userID)
	if err != nil {
		n.logger.Warn("Consent check failed", zap.String("user_id", userID), zap.Error(err))
		metrics.Notifications.WithLabelValues("error").Inc()
		return
	}
	if !ok {
		n.logger.Debug("Caregiver sharing not authorized", zap.String("user_id", userID))
		metrics.Notifications.WithLabelValues("skipped").Inc()
		return
	}

	if n.mailer == nil {
		n.logger.Warn("Mailer not configured, skipping caregiver notification",
			zap.String("user_id", userID))
		metrics.Notifications.WithLabelValues("skipped").Inc()
		return
	}

	user, err := n.store.GetUser(userID)
	if err != nil || user == nil {
		n.logger.Warn("User lookup failed for notification", zap.String("user_id", userID), zap.Error(err))
		metrics.Notifications.WithLabelValues("error").Inc()
		return
	}

	subject := "VivaBem+ | Relatório Diário de " + user.Name
	body := renderEmail(caregiver.Name, user.Name, formatReportHTML(rep))

	if err := n.mailer.Send(caregiver.Email, subject, body); err != nil {
		n.logger.Warn("Failed to deliver caregiver report",
			zap.String("user_id", userID),
			zap.String("caregiver_email", caregiver.Email),
			zap.Error(err),
		)
		metrics.Notifications.WithLabelValues("error").Inc()
		return
	}

	n.logger.Info("Caregiver report delivered",
		zap.String("user_id", userID),
		zap.String("caregiver_email", caregiver.Email),
	)
	metrics.Notifications.WithLabelValues("success").Inc()
}

// formatReportHTML renders the report body fragment
func formatReportHTML(rep *report.StructuredReport) string {
	var sb strings.Builder

	sb.WriteString("<strong>Avaliação Geral:</strong><br>")
	sb.WriteString(htmlOrNA(rep.OverallAssessment))
	sb.WriteString("<br><br>")

	sb.WriteString("<strong>Recomendações:</strong><br>")
	if len(rep.Recommendations) > 0 {
		for _, rec := range rep.Recommendations {
			sb.WriteString("• ")
			sb.WriteString(html.EscapeString(rec))
			sb.WriteString("<br>")
		}
	} else {
		sb.WriteString("Nenhuma recomendação disponível.<br>")
	}

	sb.WriteString("<br><strong>Mensagem Motivacional:</strong><br>")
	sb.WriteString(htmlOrNA(rep.MotivationalMessage))

	return sb.String()
}

func htmlOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return html.EscapeString(s)
}

const emailShell = `<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        h2 { color: #2c3e50; }
        .report-content { background-color: #f8f9fa; padding: 20px; border-radius: 8px; border-left: 4px solid #3498db; }
        hr { border: 0; height: 1px; background: #ddd; margin: 20px 0; }
        .footer { font-size: 12px; color: #7f8c8d; margin-top: 30px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Olá, %s!</h2>
        <p>Aqui está o relatório diário de saúde de <strong>%s</strong>.</p>
        <hr/>
        <div class="report-content">
            %s
        </div>
        <hr/>
        <p class="footer"><em>Este é um e-mail automático do sistema VivaBem+.</em></p>
    </div>
</body>
</html>`

func renderEmail(caregiverName, userName, content string) string {
	return fmt.Sprintf(emailShell, html.EscapeString(caregiverName), html.EscapeString(userName), content)
}
