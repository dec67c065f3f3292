package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/courseforge/courseforge-backend/internal/logger"
)

func testStorage(t *testing.T) DocumentStorage {
	t.Helper()
	t.Setenv("DOCUMENT_STORAGE_ROOT", t.TempDir())
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	storage, err := NewLocalDocumentStorage(log)
	if err != nil {
		t.Fatalf("NewLocalDocumentStorage: %v", err)
	}
	return storage
}

func TestStorageRoundTrip(t *testing.T) {
	storage := testStorage(t)
	key := "course-1/lesson-1/student-handout-1700000000000.pdf"
	payload := []byte("%PDF-1.4 fake")

	if err := storage.Write(key, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := storage.Read(key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read back %q", got)
	}

	if err := storage.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := storage.Read(key); err == nil {
		t.Fatal("read succeeded after delete")
	}
}

func TestStorageDeleteMissingIsNoop(t *testing.T) {
	storage := testStorage(t)
	if err := storage.Delete("never/written.pdf"); err != nil {
		t.Fatalf("deleting a missing key should not error: %v", err)
	}
}

func TestStorageRejectsTraversal(t *testing.T) {
	storage := testStorage(t)
	for _, key := range []string{"../outside.pdf", "a/../../outside.pdf", "/etc/passwd"} {
		if err := storage.Write(key, []byte("x")); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
	if _, err := os.Stat("outside.pdf"); err == nil {
		t.Fatal("traversal wrote outside the root")
	}
}
