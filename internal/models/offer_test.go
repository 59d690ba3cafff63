package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestOfferChatIDSerialization(t *testing.T) {
	offer := Offer{ID: uuid.New(), Status: "pending"}

	// У непринятого предложения чата нет, поле не должно попадать в JSON
	data, err := json.Marshal(offer)
	if err != nil {
		t.Fatalf("ошибка сериализации предложения: %v", err)
	}
	if strings.Contains(string(data), "chat_id") {
		t.Errorf("chat_id не должен сериализоваться без чата: %s", data)
	}

	chatID := uuid.New()
	offer.ChatID = &chatID
	data, err = json.Marshal(offer)
	if err != nil {
		t.Fatalf("ошибка сериализации предложения: %v", err)
	}
	if !strings.Contains(string(data), `"chat_id":"`+chatID.String()+`"`) {
		t.Errorf("chat_id принятого предложения должен сериализоваться: %s", data)
	}
}
