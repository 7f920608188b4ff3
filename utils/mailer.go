package utils

import (
	"fmt"

	"agro-app/config"
	"agro-app/models"

	"gopkg.in/gomail.v2"
)

// LowStockMailer emails the configured recipients when a supply drops below
// its minimum-stock threshold. It satisfies services.LowStockNotifier.
type LowStockMailer struct{}

func NewLowStockMailer() *LowStockMailer {
	return &LowStockMailer{}
}

func (m *LowStockMailer) NotifyLowStock(item *models.SupplyItem) {
	if config.SMTPHost == "" || len(config.AlertEmails) == 0 {
		return
	}

	subject := "⚠️ Low stock: " + item.Name
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Supply below minimum stock</h3>
				<p>Supply: <strong>%s</strong></p>
				<p>On hand: <strong>%.2f %s</strong> (minimum: %.2f %s)</p>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, item.Name, item.QuantityOnHand, item.Unit, item.MinimumStock, item.Unit)

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPUser)
	msg.SetHeader("To", config.AlertEmails...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		fmt.Println("❌ Failed to send low stock alert:", err)
		return
	}
	fmt.Println("✅ Low stock alert sent for:", item.Name)
}
