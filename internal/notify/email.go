package notify

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/ddanilkin/swapy-api/internal/config"
)

// Notifier отправляет email-уведомления. Отправка идёт по принципу
// best-effort: ошибка логируется и не влияет на основную операцию.
type Notifier struct {
	cfg     config.SMTPConfig
	enabled bool
}

// NewNotifier создает новый экземпляр Notifier. Если SMTP не настроен,
// уведомления отключаются.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		cfg:     cfg.SMTPConfig,
		enabled: cfg.SMTPConfig.Host != "",
	}
}

// Send отправляет письмо в фоне, не блокируя обработку запроса
func (n *Notifier) Send(to, name, subject, body string) {
	if !n.enabled || to == "" {
		return
	}

	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", n.cfg.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", RenderBody(name, body))

		d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("Ошибка отправки уведомления на %s: %v", to, err)
		}
	}()
}

// RenderBody оборачивает текст уведомления в общий HTML-шаблон
func RenderBody(name, message string) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Здравствуйте, %s!</h2>
			<div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">%s</div>
			<p style="color: #666; font-size: 12px; margin-top: 20px;">
				Это письмо отправлено платформой обмена Swapy.
			</p>
		</div>`, name, message)
}

// OfferCreated уведомляет владельца вещи о новом предложении
func (n *Notifier) OfferCreated(to, name, itemTitle, message string) {
	body := fmt.Sprintf(
		"<p>На вашу вещь «%s» поступило новое предложение обмена!</p><p><strong>Сообщение:</strong> %s</p><p>Подробности смотрите на платформе.</p>",
		itemTitle, message)
	n.Send(to, name, "Новое предложение обмена", body)
}

// OfferAccepted уведомляет отправителя о принятии его предложения
func (n *Notifier) OfferAccepted(to, name, itemTitle, response string) {
	body := fmt.Sprintf("<p>Ваше предложение по вещи «%s» принято!</p>", itemTitle)
	if response != "" {
		body += fmt.Sprintf("<p><strong>Ответ:</strong> %s</p>", response)
	}
	n.Send(to, name, "Предложение принято", body)
}

// OfferRejected уведомляет отправителя об отклонении его предложения
func (n *Notifier) OfferRejected(to, name, itemTitle, response string) {
	body := fmt.Sprintf("<p>Ваше предложение по вещи «%s» отклонено.</p>", itemTitle)
	if response != "" {
		body += fmt.Sprintf("<p><strong>Ответ:</strong> %s</p>", response)
	}
	n.Send(to, name, "Предложение отклонено", body)
}

// NewChatMessage уведомляет собеседника о новом сообщении
func (n *Notifier) NewChatMessage(to, name, message string) {
	body := fmt.Sprintf("<p>Вам пришло новое сообщение в чате обмена.</p><p><strong>Сообщение:</strong> %s</p>", previewText(message))
	n.Send(to, name, "Новое сообщение", body)
}

// previewText обрезает текст сообщения для письма
func previewText(s string) string {
	const maxPreview = 100
	runes := []rune(s)
	if len(runes) <= maxPreview {
		return s
	}
	return string(runes[:maxPreview]) + "..."
}

// ReportReceived уведомляет администратора о новой жалобе
func (n *Notifier) ReportReceived(to, name, reportType, targetType string) {
	body := fmt.Sprintf(
		"<p>Поступила новая жалоба.</p><p><strong>Тип:</strong> %s</p><p><strong>Объект:</strong> %s</p><p>Проверьте её в панели администратора.</p>",
		reportType, targetType)
	n.Send(to, name, "Новая жалоба", body)
}

// ReportResolved уведомляет автора жалобы о результате рассмотрения
func (n *Notifier) ReportResolved(to, name string, resolved bool, notes string) {
	var body string
	if resolved {
		body = "<p>Ваша жалоба рассмотрена, необходимые меры приняты.</p>"
	} else {
		body = "<p>Ваша жалоба рассмотрена, оснований для дальнейших мер не найдено.</p>"
	}
	if notes != "" {
		body += fmt.Sprintf("<p><strong>Комментарий:</strong> %s</p>", notes)
	}
	n.Send(to, name, "Результат рассмотрения жалобы", body)
}

// AccountWarning отправляет предупреждение пользователю
func (n *Notifier) AccountWarning(to, name, notes string) {
	body := "<p>На ваши действия поступила жалоба. Пожалуйста, соблюдайте правила платформы.</p>"
	if notes != "" {
		body += fmt.Sprintf("<p><strong>Комментарий:</strong> %s</p>", notes)
	}
	n.Send(to, name, "Предупреждение", body)
}

// AccountSuspended уведомляет о временной блокировке аккаунта
func (n *Notifier) AccountSuspended(to, name, notes string) {
	body := "<p>Ваш аккаунт временно заблокирован. За подробностями обратитесь к администратору.</p>"
	if notes != "" {
		body += fmt.Sprintf("<p><strong>Причина:</strong> %s</p>", notes)
	}
	n.Send(to, name, "Аккаунт временно заблокирован", body)
}

// AccountBanned уведомляет о постоянной блокировке аккаунта
func (n *Notifier) AccountBanned(to, name, notes string) {
	body := "<p>Ваш аккаунт заблокирован без возможности восстановления.</p>"
	if notes != "" {
		body += fmt.Sprintf("<p><strong>Причина:</strong> %s</p>", notes)
	}
	n.Send(to, name, "Аккаунт заблокирован", body)
}
