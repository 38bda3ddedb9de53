package store

import (
	"sync"
	"testing"

	"github.com/PigStep/Vibe-BPMN-studio/internal/models"
)

func TestInMemoryStore_SaveAndGet(t *testing.T) {
	s := NewInMemoryStore()

	state := models.SessionState{SessionID: "s1", Stage: models.StageWait, UserInput: "order process"}
	if err := s.SaveSession(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetSession("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored session, got nil")
	}
	if got.Stage != models.StageWait || got.UserInput != "order process" {
		t.Errorf("stored state mismatch: %+v", got)
	}
}

func TestInMemoryStore_GetMissingReturnsNil(t *testing.T) {
	s := NewInMemoryStore()
	got, err := s.GetSession("absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestInMemoryStore_CopiesOut(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.SaveSession(models.SessionState{SessionID: "s1", UserInput: "original"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := s.GetSession("s1")
	first.UserInput = "mutated"

	second, _ := s.GetSession("s1")
	if second.UserInput != "original" {
		t.Error("mutating a returned state must not affect the stored state")
	}
}

func TestInMemoryStore_DeleteAndReset(t *testing.T) {
	s := NewInMemoryStore()
	_ = s.SaveSession(models.SessionState{SessionID: "s1"})
	_ = s.SaveSession(models.SessionState{SessionID: "s2"})

	if err := s.DeleteSession("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := s.GetSession("s1"); got != nil {
		t.Error("deleted session still present")
	}
	if got, _ := s.GetSession("s2"); got == nil {
		t.Error("unrelated session removed by delete")
	}

	if err := s.DeleteSession("never-existed"); err != nil {
		t.Errorf("deleting a missing session must not fail: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := s.GetSession("s2"); got != nil {
		t.Error("reset did not remove all sessions")
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%8))
			_ = s.SaveSession(models.SessionState{SessionID: id, Attempts: n})
			_, _ = s.GetSession(id)
		}(i)
	}
	wg.Wait()
}
