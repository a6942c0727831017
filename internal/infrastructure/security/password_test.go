package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("longpass1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "longpass1" {
		t.Fatalf("expected password to be hashed")
	}

	ok, err := h.Verify("longpass1", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("wrongpass", hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Verify("pass", "not-a-bcrypt-hash")
	if ok {
		t.Fatalf("expected no match")
	}
	if !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("expected ErrHashing, got %v", err)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("expected ErrHashing, got %v", err)
	}
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != DefaultPasswordCost {
		t.Fatalf("expected cost %d, got %d", DefaultPasswordCost, h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost + 1); h.cost != DefaultPasswordCost {
		t.Fatalf("expected cost %d, got %d", DefaultPasswordCost, h.cost)
	}
}
