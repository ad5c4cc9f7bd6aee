package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
	"github.com/illarion/lockdir/internal/prompt"
)

// AdminStatus lists every folder record, locked or not, in the order they
// were first locked.
func AdminStatus(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	admin := core.NewAdmin(reg, hider.New())

	password, err := adminPassword()
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	records, err := admin.Status(password)
	if err != nil {
		HandleError(err)
	}

	if len(records) == 0 {
		fmt.Println("No folders are currently tracked")
		return
	}

	fmt.Printf("%-50s %-20s %s\n", "Folder", "Locked at", "State")
	for _, rec := range records {
		fmt.Printf("%-50s %-20s %s\n",
			truncatePath(rec.Path, 50),
			rec.LockedAt.Format(time.DateTime),
			rec.State)
	}
}

// AdminChangePass replaces the user password after admin verification.
// Locked folders remain locked under the new password.
func AdminChangePass(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	admin := core.NewAdmin(reg, hider.New())

	password, err := adminPassword()
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	newPassword := readSetupPassword(prompt.UserPasswordEnv+"_NEW", "new user password")
	defer credential.ClearBytes(newPassword)

	if err := admin.ChangeUserPassword(password, newPassword); err != nil {
		HandleError(err)
	}

	fmt.Println("✓ User password changed")
}

// AdminChangeAdmin replaces the admin password.
func AdminChangeAdmin(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	admin := core.NewAdmin(reg, hider.New())

	password, err := adminPassword()
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	newPassword := readSetupPassword(prompt.AdminPasswordEnv+"_NEW", "new admin password")
	defer credential.ClearBytes(newPassword)

	if err := admin.ChangeAdminPassword(password, newPassword); err != nil {
		HandleError(err)
	}

	fmt.Println("✓ Admin password changed")
}

// AdminUnlockAll is the emergency recovery path: it reveals every locked
// folder, reporting per-folder outcomes, and never aborts on a single
// failure.
func AdminUnlockAll(ctx context.Context, store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	admin := core.NewAdmin(reg, hider.New())

	password, err := adminPassword()
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	report, err := admin.UnlockAll(ctx, password)
	if err != nil {
		HandleError(err)
	}

	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Printf("failed:   %s (%s)\n", res.Path, res.Err)
		} else {
			fmt.Printf("unlocked: %s\n", res.Path)
		}
	}

	fmt.Printf("\n✓ %d folders unlocked", report.Unlocked())
	if failed := report.Failed(); failed > 0 {
		fmt.Printf(", %d failed\n", failed)
		os.Exit(ExitPartialFailure)
	}
	fmt.Println()
}

// AdminPurge removes records for folders that are already unlocked,
// keeping the status listing focused on folders lockdir still guards.
func AdminPurge(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	admin := core.NewAdmin(reg, hider.New())

	password, err := adminPassword()
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	purged, err := admin.Purge(password)
	if err != nil {
		HandleError(err)
	}

	if len(purged) == 0 {
		fmt.Println("No unlocked records to purge")
		return
	}
	for _, path := range purged {
		fmt.Printf("purged: %s\n", path)
	}
	fmt.Printf("✓ %d records purged\n", len(purged))
}

// truncatePath shortens long paths for tabular display, keeping the tail.
func truncatePath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-(max-3):]
}
