package core

import (
	"context"
	"fmt"

	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
	"github.com/illarion/lockdir/internal/registry"
)

// Admin performs privileged operations. Every operation verifies the admin
// password before touching anything.
type Admin struct {
	reg     Store
	creds   *credential.Store
	toggler hider.Toggler
}

// NewAdmin creates an Admin over an opened registry and a platform toggler.
func NewAdmin(reg Store, toggler hider.Toggler) *Admin {
	return &Admin{
		reg:     reg,
		creds:   credential.NewStore(),
		toggler: toggler,
	}
}

// ChangeUserPassword replaces the user credential with a freshly salted one
// derived from newPassword. Locked folders stay locked; only the password
// that unlocks them changes.
func (a *Admin) ChangeUserPassword(adminPassword, newPassword []byte) error {
	if err := a.VerifyAdminPassword(adminPassword); err != nil {
		return err
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	cred, err := a.creds.Create(newPassword)
	if err != nil {
		return err
	}
	return a.reg.SetCredential(registry.RoleUser, cred)
}

// ChangeAdminPassword replaces the admin credential, verified against the
// current admin password.
func (a *Admin) ChangeAdminPassword(adminPassword, newPassword []byte) error {
	if err := a.VerifyAdminPassword(adminPassword); err != nil {
		return err
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	cred, err := a.creds.Create(newPassword)
	if err != nil {
		return err
	}
	return a.reg.SetCredential(registry.RoleAdmin, cred)
}

// Status returns every folder record in insertion order. Read-only.
func (a *Admin) Status(adminPassword []byte) ([]registry.FolderRecord, error) {
	if err := a.VerifyAdminPassword(adminPassword); err != nil {
		return nil, err
	}
	return a.reg.ListAll()
}

// UnlockOutcome is the per-folder result of UnlockAll. Err is nil when the
// folder was unlocked.
type UnlockOutcome struct {
	Path string
	Err  error
}

// UnlockAllReport collects the outcome of every locked folder processed by
// UnlockAll.
type UnlockAllReport struct {
	Results []UnlockOutcome
}

// Unlocked returns the number of folders successfully unlocked.
func (r *UnlockAllReport) Unlocked() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of folders that could not be unlocked.
func (r *UnlockAllReport) Failed() int {
	return len(r.Results) - r.Unlocked()
}

// UnlockAll is the emergency recovery path: it reveals every locked folder,
// continuing past individual failures, and always returns the full report.
// Folders whose reveal fails stay recorded Locked.
func (a *Admin) UnlockAll(ctx context.Context, adminPassword []byte) (*UnlockAllReport, error) {
	if err := a.VerifyAdminPassword(adminPassword); err != nil {
		return nil, err
	}

	records, err := a.reg.ListAll()
	if err != nil {
		return nil, err
	}

	report := &UnlockAllReport{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if rec.State != registry.StateLocked {
			continue
		}

		if err := a.toggler.Reveal(rec.Path); err != nil {
			report.Results = append(report.Results, UnlockOutcome{Path: rec.Path, Err: err})
			continue
		}

		rec.State = registry.StateUnlocked
		if err := a.reg.Upsert(rec); err != nil {
			// Folder is revealed but still recorded Locked; a retry of
			// unlock-all picks it up again.
			report.Results = append(report.Results, UnlockOutcome{
				Path: rec.Path,
				Err:  fmt.Errorf("%w: revealed but not recorded: %v", ErrPartialFailure, err),
			})
			continue
		}

		report.Results = append(report.Results, UnlockOutcome{Path: rec.Path})
	}

	return report, nil
}

// Purge removes every Unlocked record from the registry. Locked records
// are never purged; they guard real hidden folders. Returns the purged
// paths.
func (a *Admin) Purge(adminPassword []byte) ([]string, error) {
	if err := a.VerifyAdminPassword(adminPassword); err != nil {
		return nil, err
	}

	records, err := a.reg.ListAll()
	if err != nil {
		return nil, err
	}

	var purged []string
	for _, rec := range records {
		if rec.State != registry.StateUnlocked {
			continue
		}
		removed, err := a.reg.Remove(rec.Path)
		if err != nil {
			return purged, err
		}
		if removed {
			purged = append(purged, rec.Path)
		}
	}
	return purged, nil
}

// VerifyAdminPassword checks the password against the stored admin
// credential.
func (a *Admin) VerifyAdminPassword(password []byte) error {
	cred, err := a.reg.Credential(registry.RoleAdmin)
	if err != nil {
		return err
	}
	if cred == nil {
		return registry.ErrNotInitialized
	}
	if !a.creds.Verify(password, cred) {
		return ErrInvalidCredential
	}
	return nil
}
