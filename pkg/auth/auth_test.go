package auth

import (
	"strings"
	"testing"
)

func TestHMACKeyRoundTrip(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "test-secret")

	key := GenerateHMACKey("reporting-service")
	userID, err := VerifyHMACKey(key)
	if err != nil {
		t.Fatalf("VerifyHMACKey failed: %v", err)
	}
	if userID != "reporting-service" {
		t.Errorf("Expected user id reporting-service, got %q", userID)
	}
}

func TestHMACKeyTamperDetected(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "test-secret")

	key := GenerateHMACKey("reporting-service")
	signature := strings.SplitN(key, ".", 2)[1]
	if _, err := VerifyHMACKey("other-service." + signature); err == nil {
		t.Errorf("Expected tampered key to fail verification")
	}
	if _, err := VerifyHMACKey("not-a-key"); err == nil {
		t.Errorf("Expected malformed key to fail verification")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Errorf("Expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Errorf("Expected wrong password to fail")
	}
}
