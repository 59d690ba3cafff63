package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("неверный UUID %s: %v", s, err)
	}
	return id
}

func TestCapImages(t *testing.T) {
	img := func(id string) ItemImage {
		return ItemImage{URL: "https://res.cloudinary.com/demo/" + id, PublicID: id}
	}

	// В пределах лимита ничего не отбрасывается
	kept, dropped := CapImages([]ItemImage{img("a"), img("b")}, []ItemImage{img("c")})
	if len(kept) != 3 || len(dropped) != 0 {
		t.Fatalf("ожидалось 3 изображения без отброшенных, получено %d и %d", len(kept), len(dropped))
	}

	// При превышении лимита отбрасываются самые старые
	existing := []ItemImage{img("1"), img("2"), img("3"), img("4")}
	added := []ItemImage{img("5"), img("6"), img("7")}
	kept, dropped = CapImages(existing, added)
	if len(kept) != MaxItemImages {
		t.Fatalf("ожидалось %d изображений, получено %d", MaxItemImages, len(kept))
	}
	if len(dropped) != 2 {
		t.Fatalf("ожидалось 2 отброшенных изображения, получено %d", len(dropped))
	}
	if dropped[0].PublicID != "1" || dropped[1].PublicID != "2" {
		t.Errorf("отброшены не самые старые изображения: %v", dropped)
	}
	if kept[len(kept)-1].PublicID != "7" {
		t.Errorf("новые изображения должны сохраняться: %v", kept)
	}

	// Пустые списки
	kept, dropped = CapImages(nil, nil)
	if len(kept) != 0 || dropped != nil {
		t.Errorf("ожидался пустой результат, получено %v и %v", kept, dropped)
	}
}

func TestDefaultExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := DefaultItemExpiry(now); !got.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Errorf("срок объявления должен быть 30 дней, получено %v", got.Sub(now))
	}
	if got := DefaultOfferExpiry(now); !got.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("срок предложения должен быть 24 часа, получено %v", got.Sub(now))
	}
}

func TestCategories(t *testing.T) {
	categories := Categories()
	if len(categories) != len(ValidCategories) {
		t.Fatalf("список категорий (%d) расходится со справочником (%d)", len(categories), len(ValidCategories))
	}
	for _, category := range categories {
		if !ValidCategories[category] {
			t.Errorf("категория %s отсутствует в справочнике", category)
		}
	}
}

func TestChatIsParticipant(t *testing.T) {
	chat := Chat{}
	chat.OfferedBy = mustUUID(t, "11111111-1111-1111-1111-111111111111")
	chat.OfferedTo = mustUUID(t, "22222222-2222-2222-2222-222222222222")

	if !chat.IsParticipant(chat.OfferedBy) || !chat.IsParticipant(chat.OfferedTo) {
		t.Error("участники чата должны проходить проверку")
	}
	if chat.IsParticipant(mustUUID(t, "33333333-3333-3333-3333-333333333333")) {
		t.Error("посторонний пользователь не должен проходить проверку")
	}
}
