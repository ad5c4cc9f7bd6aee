package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/illarion/lockdir/internal/credential"
)

func testState(t *testing.T) *State {
	t.Helper()
	creds := credential.NewStore()
	user, err := creds.Create([]byte("user-pass"))
	if err != nil {
		t.Fatalf("Create user credential failed: %v", err)
	}
	admin, err := creds.Create([]byte("admin-pass"))
	if err != nil {
		t.Fatalf("Create admin credential failed: %v", err)
	}
	return &State{
		UserCredential:  user,
		AdminCredential: admin,
		Folders: []FolderRecord{
			{Path: "/home/a/one", LockedAt: time.Now().Round(time.Second), State: StateLocked},
			{Path: "/home/a/two", LockedAt: time.Now().Round(time.Second), State: StateUnlocked},
		},
	}
}

func TestCreateAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	want := testState(t)

	reg, err := Create(path, want)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reg, err = Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reg.Close()

	got, err := reg.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got.Folders) != len(want.Folders) {
		t.Fatalf("Folders count: got %d, want %d", len(got.Folders), len(want.Folders))
	}
	for i := range want.Folders {
		if got.Folders[i].Path != want.Folders[i].Path {
			t.Errorf("Folder %d path: got %s, want %s", i, got.Folders[i].Path, want.Folders[i].Path)
		}
		if got.Folders[i].State != want.Folders[i].State {
			t.Errorf("Folder %d state: got %s, want %s", i, got.Folders[i].State, want.Folders[i].State)
		}
		if !got.Folders[i].LockedAt.Equal(want.Folders[i].LockedAt) {
			t.Errorf("Folder %d lockedAt: got %v, want %v", i, got.Folders[i].LockedAt, want.Folders[i].LockedAt)
		}
	}
	if got.UserCredential == nil || got.AdminCredential == nil {
		t.Fatal("Credentials should survive the round trip")
	}
	if got.UserCredential.Iterations != want.UserCredential.Iterations {
		t.Errorf("User iterations: got %d, want %d", got.UserCredential.Iterations, want.UserCredential.Iterations)
	}
	if string(got.UserCredential.Key) != string(want.UserCredential.Key) {
		t.Error("User derived key changed across the round trip")
	}
}

func TestCreateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	reg.Close()

	if _, err := Create(path, testState(t)); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("Expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	if _, err := Open(path); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestOpenGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, garbage, FilePermSecure); err != nil {
		t.Fatalf("Failed to write garbage file: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrCorruptStore) {
		t.Errorf("Expected ErrCorruptStore, got %v", err)
	}

	// The corrupt file must not have been deleted or replaced.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Store file vanished: %v", err)
	}
	if len(data) != len(garbage) {
		t.Error("Corrupt store must not be mutated")
	}
}

func TestOpenPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}

	path := filepath.Join(t.TempDir(), "registry.db")
	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	reg.Close()

	if err := os.Chmod(path, 0000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	// An unreadable store is an I/O problem, not corruption; the user
	// should not be told to restore a backup.
	_, err = Open(path)
	if !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
	if errors.Is(err, ErrCorruptStore) {
		t.Error("Permission failure must not be classified as corruption")
	}
}

func TestOpenTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	reg.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)/8], FilePermSecure); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrCorruptStore) {
		t.Errorf("Expected ErrCorruptStore, got %v", err)
	}
}

func TestLoadDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	reg.Close()

	// Rewrite the folder list behind the registry's back, leaving the
	// stored checksum stale.
	db, err := bolt.Open(path, FilePermSecure, nil)
	if err != nil {
		t.Fatalf("Raw open failed: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(StateBucket).Put(StateFolders, []byte(`[]`))
	})
	if err != nil {
		t.Fatalf("Tamper failed: %v", err)
	}
	db.Close()

	reg, err = Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reg.Close()

	if _, err := reg.Load(); !errors.Is(err, ErrCorruptStore) {
		t.Errorf("Expected ErrCorruptStore, got %v", err)
	}
}

func TestUpsertAndFindByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, &State{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer reg.Close()

	rec := FolderRecord{Path: "/data/photos", LockedAt: time.Now(), State: StateLocked}
	if err := reg.Upsert(rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	found, err := reg.FindByPath("/data/photos")
	if err != nil {
		t.Fatalf("FindByPath failed: %v", err)
	}
	if found == nil {
		t.Fatal("Record should be found")
	}
	if found.State != StateLocked {
		t.Errorf("State: got %s, want %s", found.State, StateLocked)
	}

	// Replace by key
	rec.State = StateUnlocked
	if err := reg.Upsert(rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	all, err := reg.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Upsert by existing key must replace, got %d records", len(all))
	}
	if all[0].State != StateUnlocked {
		t.Errorf("State after replace: got %s, want %s", all[0].State, StateUnlocked)
	}

	missing, err := reg.FindByPath("/no/such/folder")
	if err != nil {
		t.Fatalf("FindByPath failed: %v", err)
	}
	if missing != nil {
		t.Error("Unknown path should return nil")
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, &State{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer reg.Close()

	for _, p := range []string{"/one", "/two"} {
		if err := reg.Upsert(FolderRecord{Path: p, LockedAt: time.Now(), State: StateUnlocked}); err != nil {
			t.Fatalf("Upsert %s failed: %v", p, err)
		}
	}

	removed, err := reg.Remove("/one")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Error("Remove of an existing record should report true")
	}

	all, err := reg.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Path != "/two" {
		t.Fatalf("Remaining records wrong: %+v", all)
	}

	removed, err = reg.Remove("/one")
	if err != nil {
		t.Fatalf("Second Remove failed: %v", err)
	}
	if removed {
		t.Error("Remove of a missing record should report false")
	}
}

func TestListAllPreservesInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, &State{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer reg.Close()

	paths := []string{"/zeta", "/alpha", "/mid"}
	for _, p := range paths {
		if err := reg.Upsert(FolderRecord{Path: p, LockedAt: time.Now(), State: StateLocked}); err != nil {
			t.Fatalf("Upsert %s failed: %v", p, err)
		}
	}

	// Re-upserting an early record must not move it.
	if err := reg.Upsert(FolderRecord{Path: "/zeta", LockedAt: time.Now(), State: StateUnlocked}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	all, err := reg.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != len(paths) {
		t.Fatalf("Records: got %d, want %d", len(all), len(paths))
	}
	for i, p := range paths {
		if all[i].Path != p {
			t.Errorf("Position %d: got %s, want %s", i, all[i].Path, p)
		}
	}
}

func TestSetCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	initial := testState(t)

	reg, err := Create(path, initial)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer reg.Close()

	creds := credential.NewStore()
	replacement, err := creds.Create([]byte("new-user-pass"))
	if err != nil {
		t.Fatalf("Create credential failed: %v", err)
	}
	if err := reg.SetCredential(RoleUser, replacement); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}

	user, err := reg.Credential(RoleUser)
	if err != nil {
		t.Fatalf("Credential failed: %v", err)
	}
	if string(user.Key) != string(replacement.Key) {
		t.Error("User credential was not replaced")
	}

	admin, err := reg.Credential(RoleAdmin)
	if err != nil {
		t.Fatalf("Credential failed: %v", err)
	}
	if string(admin.Key) != string(initial.AdminCredential.Key) {
		t.Error("Admin credential must be untouched by a user-role update")
	}
}

func TestOpenWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer reg.Close()

	if _, err := Open(path); !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("Expected ErrConcurrentModification, got %v", err)
	}
}

func TestRegistryID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	reg, err := Create(path, testState(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	id1, err := reg.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id1 == "" {
		t.Fatal("ID should not be empty")
	}
	reg.Close()

	reg, err = Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reg.Close()

	id2, err := reg.ID()
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ID must be stable: got %s then %s", id1, id2)
	}
}
