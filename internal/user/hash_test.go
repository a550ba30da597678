package user

import "testing"

func TestLegacyHashIsDeterministicHex(t *testing.T) {
	h := LegacyHasher{}

	a, err := h.Hash("password1", "john_doe")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, _ := h.Hash("password1", "john_doe")
	if a != b {
		t.Fatalf("hash not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d (%q)", len(a), a)
	}
}

func TestLegacyCompareUsesSuppliedIdentifier(t *testing.T) {
	h := LegacyHasher{}
	stored, _ := h.Hash("password1", "john_doe")

	if !h.Compare(stored, "password1", "john_doe") {
		t.Fatalf("expected match with registration username")
	}
	// The identifier is part of the hash input: a different login string
	// must not verify even with the right password.
	if h.Compare(stored, "password1", "john.doe@agritech.com") {
		t.Fatalf("expected mismatch when identifier differs from hash input")
	}
	if h.Compare(stored, "wrong", "john_doe") {
		t.Fatalf("expected mismatch with wrong password")
	}
}

func TestLegacyHashDiffersPerUsername(t *testing.T) {
	h := LegacyHasher{}
	a, _ := h.Hash("password1", "john_doe")
	b, _ := h.Hash("password1", "sarah_smith")
	if a == b {
		t.Fatalf("identical passwords for different usernames must hash differently")
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}
	stored, err := h.Hash("password1", "john_doe")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !h.Compare(stored, "password1", "anything") {
		t.Fatalf("expected bcrypt match regardless of identifier")
	}
	if h.Compare(stored, "wrong", "john_doe") {
		t.Fatalf("expected bcrypt mismatch with wrong password")
	}
}

func TestNewHasherSchemes(t *testing.T) {
	if _, err := NewHasher(""); err != nil {
		t.Fatalf("default scheme: %v", err)
	}
	if _, err := NewHasher("legacy"); err != nil {
		t.Fatalf("legacy scheme: %v", err)
	}
	if _, err := NewHasher("bcrypt"); err != nil {
		t.Fatalf("bcrypt scheme: %v", err)
	}
	if _, err := NewHasher("md5"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}
