package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
	"github.com/illarion/lockdir/internal/registry"
)

// Store is the registry surface lock/unlock and admin operations go
// through. *registry.Registry satisfies it; tests substitute fakes.
type Store interface {
	Credential(role registry.Role) (*credential.Credential, error)
	SetCredential(role registry.Role, cred *credential.Credential) error
	FindByPath(path string) (*registry.FolderRecord, error)
	Upsert(rec registry.FolderRecord) error
	Remove(path string) (bool, error)
	ListAll() ([]registry.FolderRecord, error)
}

// Engine orchestrates lock/unlock transitions for single folders.
type Engine struct {
	reg     Store
	creds   *credential.Store
	toggler hider.Toggler
}

// NewEngine creates an Engine over an opened registry and a platform
// toggler.
func NewEngine(reg Store, toggler hider.Toggler) *Engine {
	return &Engine{
		reg:     reg,
		creds:   credential.NewStore(),
		toggler: toggler,
	}
}

// Lock hides the folder at path after verifying the user password.
//
// The registry is updated only after the hide side effect succeeds, so a
// folder is never recorded Locked while still visible. If the registry
// update then fails, the hide is rolled back best-effort and
// ErrPartialFailure is returned.
func (e *Engine) Lock(ctx context.Context, path string, password []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := CanonicalPath(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	if err := e.VerifyUserPassword(password); err != nil {
		return err
	}

	rec, err := e.reg.FindByPath(canonical)
	if err != nil {
		return err
	}
	if rec != nil && rec.State == registry.StateLocked {
		return fmt.Errorf("%w: %s", ErrAlreadyLocked, canonical)
	}

	if err := e.toggler.Hide(canonical); err != nil {
		return err
	}

	err = e.reg.Upsert(registry.FolderRecord{
		Path:     canonical,
		LockedAt: time.Now(),
		State:    registry.StateLocked,
	})
	if err != nil {
		if rbErr := e.toggler.Reveal(canonical); rbErr != nil {
			return fmt.Errorf("%w: %s hidden but not recorded (%v), rollback failed: %v",
				ErrPartialFailure, canonical, err, rbErr)
		}
		return fmt.Errorf("%w: could not record lock of %s, folder left unlocked: %v",
			ErrPartialFailure, canonical, err)
	}

	return nil
}

// Unlock reveals the folder at path after verifying the user password.
// Same ordering and rollback discipline as Lock, mirrored.
func (e *Engine) Unlock(ctx context.Context, path string, password []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := CanonicalPath(path)
	if err != nil {
		return err
	}

	if err := e.VerifyUserPassword(password); err != nil {
		return err
	}

	rec, err := e.reg.FindByPath(canonical)
	if err != nil {
		return err
	}
	if rec == nil || rec.State == registry.StateUnlocked {
		return fmt.Errorf("%w: %s", ErrNotLocked, canonical)
	}

	// Fail fast when the folder vanished while locked; the record stays
	// Locked so the situation remains visible in admin status.
	if _, err := os.Stat(canonical); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s (deleted while locked)", ErrPathNotFound, canonical)
		}
		return fmt.Errorf("cannot access %s: %w", canonical, err)
	}

	if err := e.toggler.Reveal(canonical); err != nil {
		return err
	}

	rec.State = registry.StateUnlocked
	if err := e.reg.Upsert(*rec); err != nil {
		if rbErr := e.toggler.Hide(canonical); rbErr != nil {
			return fmt.Errorf("%w: %s revealed but not recorded (%v), rollback failed: %v",
				ErrPartialFailure, canonical, err, rbErr)
		}
		return fmt.Errorf("%w: could not record unlock of %s, folder left locked: %v",
			ErrPartialFailure, canonical, err)
	}

	return nil
}

// VerifyUserPassword checks the password against the stored user credential.
func (e *Engine) VerifyUserPassword(password []byte) error {
	cred, err := e.reg.Credential(registry.RoleUser)
	if err != nil {
		return err
	}
	if cred == nil {
		return registry.ErrNotInitialized
	}
	if !e.creds.Verify(password, cred) {
		return ErrInvalidCredential
	}
	return nil
}
