package services

import (
	"strings"
	"testing"
)

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		if err != nil {
			t.Fatalf("generateOTPCode returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code contains non-digit: %q", code)
			}
		}
		seen[code] = true
	}
	// 50 draws colliding into a single value would mean a broken generator
	if len(seen) < 2 {
		t.Error("generator produced the same code on every draw")
	}
}

func TestBuildOTPMessage(t *testing.T) {
	msg := buildOTPMessage("123456")
	if !strings.Contains(msg, "123456") {
		t.Errorf("message does not contain the code: %q", msg)
	}
}
