package utils

import (
	"strconv"
	"testing"
)

func TestNewVerificationCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q length = %d, want 6", code, len(code))
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestNewRandomToken(t *testing.T) {
	a, err := NewRandomToken(32)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	b, _ := NewRandomToken(0)
	if len(b) != 64 {
		t.Errorf("default len = %d, want 64", len(b))
	}
	if a == b {
		t.Error("tokens should differ")
	}
}
