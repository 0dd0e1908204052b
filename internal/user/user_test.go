package user

import (
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	pw := "supersecret"
	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, pw); err != nil {
		t.Errorf("check should succeed: %v", err)
	}
	if err := CheckPassword(hash, "wrongpw"); err == nil {
		t.Errorf("check should fail for wrong password")
	}
}

func TestPasswordHashing_DistinctHashes(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if h1 == h2 {
		t.Errorf("expected salted hashes to differ")
	}
}
