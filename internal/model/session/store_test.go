package session_test

import (
	"testing"

	"github.com/stylemirror/backend/internal/model/session"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := session.NewMemoryStore()

	store.Put(session.Session{
		UserID:         "whatsapp:+15551230001",
		Stage:          session.StageAwaitingGarment,
		PersonImageRef: "https://api.twilio.com/...MM1/Media/ME1",
	})

	got, ok := store.Get("whatsapp:+15551230001")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if got.Stage != session.StageAwaitingGarment {
		t.Fatalf("unexpected stage: %s", got.Stage)
	}
	if got.PersonImageRef == "" {
		t.Fatal("expected person image ref to be stored")
	}
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	store := session.NewMemoryStore()

	if _, ok := store.Get("whatsapp:+15550000000"); ok {
		t.Fatal("expected no session for unseen user")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := session.NewMemoryStore()

	store.Put(session.Session{UserID: "u1", Stage: session.StageAwaitingGarment})
	store.Delete("u1")

	if _, ok := store.Get("u1"); ok {
		t.Fatal("expected session to be deleted")
	}

	// Deleting again must not panic.
	store.Delete("u1")
}
