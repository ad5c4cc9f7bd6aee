package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/illarion/lockdir/internal/credential"
)

// Bucket names
var (
	ConfigBucket      = []byte("config")      // version, timestamps, registry ID
	CredentialsBucket = []byte("credentials") // user/admin credential verifiers
	StateBucket       = []byte("state")       // folder records + checksum
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigID       = []byte("registry_id")
)

// State keys
var (
	StateFolders  = []byte("folders")
	StateChecksum = []byte("checksum")
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only

	// How long Open waits for the advisory file lock before concluding
	// another invocation holds the store.
	openTimeout = 500 * time.Millisecond
)

var (
	ErrNotInitialized         = errors.New("lockdir not initialized")
	ErrAlreadyInitialized     = errors.New("lockdir already initialized")
	ErrCorruptStore           = errors.New("registry store is corrupt")
	ErrConcurrentModification = errors.New("registry is in use by another lockdir invocation")
	ErrIO                     = errors.New("registry i/o failure")
)

// Role selects which of the two credentials an operation refers to.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// LockState is the per-folder state machine value.
type LockState string

const (
	StateLocked   LockState = "locked"
	StateUnlocked LockState = "unlocked"
)

// FolderRecord describes one folder known to lockdir. Path is the canonical
// path and acts as the primary key.
type FolderRecord struct {
	Path     string    `json:"path"`
	LockedAt time.Time `json:"lockedAt"`
	State    LockState `json:"state"`
}

// State is a full snapshot of the persisted registry. Callers treat it as
// read-only; mutations go through the Registry API.
type State struct {
	UserCredential  *credential.Credential `json:"userCredential"`
	AdminCredential *credential.Credential `json:"adminCredential"`
	Folders         []FolderRecord         `json:"folders"`
}

// Registry is a handle on the persisted store. It holds the advisory file
// lock for its lifetime; Close releases it.
type Registry struct {
	path string
	db   *bolt.DB
}

// Create initializes a brand-new store at path with the given initial state.
// It fails with ErrAlreadyInitialized when a store already exists there.
func Create(path string, state *State) (*Registry, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, ErrAlreadyInitialized
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermSecure); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	db, err := bolt.Open(path, FilePermSecure, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	r := &Registry{path: path, db: db}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, CredentialsBucket, StateBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}
		if err := config.Put(ConfigID, []byte(uuid.NewString())); err != nil {
			return err
		}
		now, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, now); err != nil {
			return err
		}

		return writeState(tx, state)
	})
	if err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return r, nil
}

// Open opens an existing store. A missing store is ErrNotInitialized (the
// caller should direct the user to setup), a file bbolt cannot parse is
// ErrCorruptStore, a file the OS refuses to open is ErrIO, and a store
// locked by another invocation is ErrConcurrentModification.
func Open(path string) (*Registry, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	db, err := bolt.Open(path, FilePermSecure, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrConcurrentModification
		}
		// OS-level open failures (permissions and the like) are not
		// corruption; only bbolt validation failures are.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	// Structure check: all buckets and the version marker must be present.
	err = db.View(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, CredentialsBucket, StateBucket} {
			if tx.Bucket(bucket) == nil {
				return fmt.Errorf("missing bucket %s", bucket)
			}
		}
		if tx.Bucket(ConfigBucket).Get(ConfigVersion) == nil {
			return errors.New("missing version marker")
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	return &Registry{path: path, db: db}, nil
}

// Close releases the store and its advisory lock.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Path returns the store file location.
func (r *Registry) Path() string {
	return r.path
}

// ID returns the stable registry ID generated at Create time. It keys the
// OS-keyring entry for this store.
func (r *Registry) ID() (string, error) {
	var id string
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(ConfigBucket).Get(ConfigID)
		if data == nil {
			return fmt.Errorf("%w: missing registry ID", ErrCorruptStore)
		}
		id = string(data)
		return nil
	})
	return id, err
}

// Load reads and validates the full persisted state.
func (r *Registry) Load() (*State, error) {
	var state *State
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		state, err = readState(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Save atomically replaces the full persisted state. On error the prior
// state remains intact and no change is visible.
func (r *Registry) Save(state *State) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return writeState(tx, state)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// FindByPath returns the record for the canonical path, or nil when the
// path is unknown.
func (r *Registry) FindByPath(path string) (*FolderRecord, error) {
	state, err := r.Load()
	if err != nil {
		return nil, err
	}
	for i := range state.Folders {
		if state.Folders[i].Path == path {
			rec := state.Folders[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// Upsert inserts or replaces a record keyed by its canonical path and
// durably saves the result. Insertion order of first appearance is kept.
func (r *Registry) Upsert(rec FolderRecord) error {
	state, err := r.Load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range state.Folders {
		if state.Folders[i].Path == rec.Path {
			state.Folders[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		state.Folders = append(state.Folders, rec)
	}
	return r.Save(state)
}

// Remove deletes the record for the canonical path and durably saves the
// result. Removing an unknown path is a no-op; the bool reports whether a
// record was removed.
func (r *Registry) Remove(path string) (bool, error) {
	state, err := r.Load()
	if err != nil {
		return false, err
	}
	for i := range state.Folders {
		if state.Folders[i].Path == path {
			state.Folders = append(state.Folders[:i], state.Folders[i+1:]...)
			return true, r.Save(state)
		}
	}
	return false, nil
}

// ListAll returns every record in insertion order.
func (r *Registry) ListAll() ([]FolderRecord, error) {
	state, err := r.Load()
	if err != nil {
		return nil, err
	}
	return state.Folders, nil
}

// SetCredential replaces the credential for the given role and durably
// saves the result.
func (r *Registry) SetCredential(role Role, cred *credential.Credential) error {
	state, err := r.Load()
	if err != nil {
		return err
	}
	switch role {
	case RoleUser:
		state.UserCredential = cred
	case RoleAdmin:
		state.AdminCredential = cred
	default:
		return fmt.Errorf("unknown credential role %q", role)
	}
	return r.Save(state)
}

// Credential returns the stored credential for a role, or nil when it has
// not been set yet.
func (r *Registry) Credential(role Role) (*credential.Credential, error) {
	state, err := r.Load()
	if err != nil {
		return nil, err
	}
	switch role {
	case RoleUser:
		return state.UserCredential, nil
	case RoleAdmin:
		return state.AdminCredential, nil
	default:
		return nil, fmt.Errorf("unknown credential role %q", role)
	}
}

// writeState serializes the state and rewrites every mutable key, including
// the checksum, inside the caller's transaction.
func writeState(tx *bolt.Tx, state *State) error {
	if state == nil {
		state = &State{}
	}

	userJSON, adminJSON, foldersJSON, err := encodeState(state)
	if err != nil {
		return err
	}

	creds := tx.Bucket(CredentialsBucket)
	if err := creds.Put([]byte(RoleUser), userJSON); err != nil {
		return err
	}
	if err := creds.Put([]byte(RoleAdmin), adminJSON); err != nil {
		return err
	}

	st := tx.Bucket(StateBucket)
	if err := st.Put(StateFolders, foldersJSON); err != nil {
		return err
	}
	if err := st.Put(StateChecksum, []byte(checksum(userJSON, adminJSON, foldersJSON))); err != nil {
		return err
	}

	now, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, now)
}

// readState deserializes the full state, validating the stored checksum.
func readState(tx *bolt.Tx) (*State, error) {
	creds := tx.Bucket(CredentialsBucket)
	st := tx.Bucket(StateBucket)
	if creds == nil || st == nil {
		return nil, fmt.Errorf("%w: missing buckets", ErrCorruptStore)
	}

	userJSON := creds.Get([]byte(RoleUser))
	adminJSON := creds.Get([]byte(RoleAdmin))
	foldersJSON := st.Get(StateFolders)
	stored := st.Get(StateChecksum)

	if foldersJSON == nil || stored == nil {
		return nil, fmt.Errorf("%w: missing state keys", ErrCorruptStore)
	}
	if checksum(userJSON, adminJSON, foldersJSON) != string(stored) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptStore)
	}

	state := &State{}
	if err := decodeCredential(userJSON, &state.UserCredential); err != nil {
		return nil, err
	}
	if err := decodeCredential(adminJSON, &state.AdminCredential); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(foldersJSON, &state.Folders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	return state, nil
}

func encodeState(state *State) (userJSON, adminJSON, foldersJSON []byte, err error) {
	userJSON, err = json.Marshal(state.UserCredential)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal user credential: %w", err)
	}
	adminJSON, err = json.Marshal(state.AdminCredential)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal admin credential: %w", err)
	}
	folders := state.Folders
	if folders == nil {
		folders = []FolderRecord{}
	}
	foldersJSON, err = json.Marshal(folders)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal folder records: %w", err)
	}
	return userJSON, adminJSON, foldersJSON, nil
}

func decodeCredential(data []byte, out **credential.Credential) error {
	if len(data) == 0 {
		*out = nil
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return nil
}

// checksum binds the three serialized sections together so that partial or
// tampered state is detected on load.
func checksum(userJSON, adminJSON, foldersJSON []byte) string {
	h := sha256.New()
	h.Write(userJSON)
	h.Write([]byte{0})
	h.Write(adminJSON)
	h.Write([]byte{0})
	h.Write(foldersJSON)
	return hex.EncodeToString(h.Sum(nil))
}
