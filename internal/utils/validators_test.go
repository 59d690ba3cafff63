package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"ivan.petrov@mail.ru",
		"a@b.co",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ожидался валидный email: %s", email)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"user@",
		"@example.com",
		"user @example.com",
		"user@example",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ожидался невалидный email: %s", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("пароль короче 8 символов должен быть отклонён")
	}
	if !ValidatePassword("longenough") {
		t.Error("пароль из 10 символов должен проходить проверку")
	}
	if ValidatePassword("") {
		t.Error("пустой пароль должен быть отклонён")
	}
}
