package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
)

// Unlock reveals a previously locked folder.
func Unlock(ctx context.Context, store, path string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	engine := core.NewEngine(reg, hider.New())

	password, err := userPassword(reg, engine.VerifyUserPassword)
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	if err := engine.Unlock(ctx, path, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Unlocked %s\n", path)
}
