package notify

import (
	"strings"
	"testing"

	"github.com/ddanilkin/swapy-api/internal/config"
)

func TestRenderBody(t *testing.T) {
	body := RenderBody("Иван", "<p>текст</p>")
	if !strings.Contains(body, "Здравствуйте, Иван!") {
		t.Error("в письме нет обращения к пользователю")
	}
	if !strings.Contains(body, "<p>текст</p>") {
		t.Error("в письме нет текста уведомления")
	}
}

func TestNotifierDisabledWithoutSMTP(t *testing.T) {
	n := NewNotifier(&config.Config{})
	if n.enabled {
		t.Error("без SMTP_HOST уведомления должны быть отключены")
	}
	// Не должно паниковать и ничего не отправляет
	n.Send("user@example.com", "Иван", "Тест", "тело")
}

func TestPreviewText(t *testing.T) {
	short := "привет"
	if previewText(short) != short {
		t.Error("короткий текст не должен обрезаться")
	}

	long := strings.Repeat("я", 150)
	got := previewText(long)
	if len([]rune(got)) != 103 {
		t.Errorf("ожидалась обрезка до 103 символов, получено %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("обрезанный текст должен оканчиваться многоточием")
	}
}
