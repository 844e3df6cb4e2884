package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitd/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	want := "postgres://habitd@localhost:5432/habits?sslmode=disable"
	if err := SetConnectionString(want); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != want {
		t.Errorf("GetConnectionString() = %q, want %q", got, want)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("   "); err == nil {
		t.Error("SetConnectionString with blank input should return an error")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://habitd@localhost/habits"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolveConnectionString(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "postgres://env@localhost/habits")
		if err := SetConnectionString("postgres://keyring@localhost/habits"); err != nil {
			t.Fatalf("SetConnectionString() failed: %v", err)
		}
		got, err := ResolveConnectionString()
		if err != nil {
			t.Fatalf("ResolveConnectionString() failed: %v", err)
		}
		if got != "postgres://env@localhost/habits" {
			t.Errorf("ResolveConnectionString() = %q", got)
		}
	})

	t.Run("keyring fallback", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "")
		got, err := ResolveConnectionString()
		if err != nil {
			t.Fatalf("ResolveConnectionString() failed: %v", err)
		}
		if got != "postgres://keyring@localhost/habits" {
			t.Errorf("ResolveConnectionString() = %q", got)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "")
		_ = DeleteConnectionString()
		if _, err := ResolveConnectionString(); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveConnectionString() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
