package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
)

// Lock hides a folder behind the user password.
func Lock(ctx context.Context, store, path string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	engine := core.NewEngine(reg, hider.New())

	password, err := userPassword(reg, engine.VerifyUserPassword)
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	if err := engine.Lock(ctx, path, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Locked %s\n", path)
}
