package session

import (
	"testing"

	"github.com/and161185/debtdesk/internal/model"
)

func TestStore_SetClearCurrent(t *testing.T) {
	t.Parallel()
	s := New()

	if s.IsAuthenticated() {
		t.Fatalf("fresh store must be empty")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("Current on empty store")
	}

	s.Set(model.User{ID: 1, Username: "alice"})
	if !s.IsAuthenticated() {
		t.Fatalf("IsAuthenticated after Set")
	}
	u, ok := s.Current()
	if !ok || u.Username != "alice" {
		t.Fatalf("Current: %+v ok=%v", u, ok)
	}

	// every set is a full replace
	s.Set(model.User{ID: 2, Username: "bob"})
	u, _ = s.Current()
	if u.ID != 2 || u.Username != "bob" {
		t.Fatalf("replace: %+v", u)
	}

	s.Clear()
	if s.IsAuthenticated() {
		t.Fatalf("IsAuthenticated after Clear")
	}
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	s.Set(model.User{ID: 1, Username: "alice"})

	u, _ := s.Current()
	u.Username = "mallory"

	again, _ := s.Current()
	if again.Username != "alice" {
		t.Fatalf("store mutated through returned copy: %+v", again)
	}
}
