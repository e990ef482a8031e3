package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Fatal("password stored in the clear")
	}
	if err := ComparePassword(hashed, "s3cret-pass"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hashed, "wrong-pass"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
