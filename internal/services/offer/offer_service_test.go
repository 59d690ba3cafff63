package offer

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ddanilkin/swapy-api/internal/models"
)

func TestCreateOfferGuard(t *testing.T) {
	owner := uuid.New()
	sender := uuid.New()

	// Активная чужая вещь проходит проверку
	if code, msg := createOfferGuard(models.ItemStatusActive, owner, sender); code != 0 {
		t.Fatalf("активная вещь не должна отклоняться: %d %s", code, msg)
	}

	// Неактивная вещь для клиента неотличима от несуществующей
	for _, status := range []string{models.ItemStatusInactive, models.ItemStatusCompleted, models.ItemStatusRemoved} {
		code, _ := createOfferGuard(status, owner, sender)
		if code != fiber.StatusNotFound {
			t.Errorf("вещь со статусом %s должна давать 404, получено %d", status, code)
		}
	}

	// Предложение на собственную вещь отклоняется как ошибка запроса
	if code, _ := createOfferGuard(models.ItemStatusActive, owner, owner); code != fiber.StatusBadRequest {
		t.Error("предложение на собственную вещь должно давать 400")
	}

	// Проверка статуса идет раньше проверки владельца
	if code, _ := createOfferGuard(models.ItemStatusRemoved, owner, owner); code != fiber.StatusNotFound {
		t.Error("для неактивной собственной вещи приоритет у 404")
	}
}
