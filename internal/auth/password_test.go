package auth

import (
	"testing"
)

func TestHashPasswordProducesSaltedHash(t *testing.T) {
	senha := "painel-admin-2024"

	first, err := HashPassword(senha)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == "" || first == senha {
		t.Fatalf("hash = %q, want a non-empty value distinct from the password", first)
	}

	second, err := HashPassword(senha)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ by salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("painel-admin-2024")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := CheckPassword(hash, "painel-admin-2024"); err != nil {
		t.Errorf("CheckPassword() with the right password = %v", err)
	}
	if err := CheckPassword(hash, "painel-admin-2025"); err == nil {
		t.Error("CheckPassword() must reject a wrong password")
	}
	if err := CheckPassword("not-a-bcrypt-hash", "painel-admin-2024"); err == nil {
		t.Error("CheckPassword() must reject a malformed hash")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	hash, err := HashPassword("")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := CheckPassword(hash, ""); err != nil {
		t.Errorf("CheckPassword() for the empty password = %v", err)
	}
}
