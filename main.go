package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/lockdir/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(cmd.ExitFailure)
	}

	switch os.Args[1] {
	case "setup":
		runSetup(ctx, os.Args[2:])
	case "lock":
		runLock(ctx, os.Args[2:])
	case "unlock":
		runUnlock(ctx, os.Args[2:])
	case "admin":
		runAdmin(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(cmd.ExitFailure)
	}
}

func runSetup(_ context.Context, args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	store := fs.String("store", "", "Registry file location")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cmd.ExitFailure)
	}

	cmd.Setup(*store)
}

func runLock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	store := fs.String("store", "", "Registry file location")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cmd.ExitFailure)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir lock [--store <file>] <folder>")
		os.Exit(cmd.ExitFailure)
	}

	cmd.Lock(ctx, *store, fs.Arg(0))
}

func runUnlock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	store := fs.String("store", "", "Registry file location")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cmd.ExitFailure)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir unlock [--store <file>] <folder>")
		os.Exit(cmd.ExitFailure)
	}

	cmd.Unlock(ctx, *store, fs.Arg(0))
}

func runAdmin(ctx context.Context, args []string) {
	if len(args) < 1 {
		printAdminUsage()
		os.Exit(cmd.ExitFailure)
	}

	fs := flag.NewFlagSet("admin "+args[0], flag.ExitOnError)
	store := fs.String("store", "", "Registry file location")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cmd.ExitFailure)
	}

	switch args[0] {
	case "status":
		cmd.AdminStatus(*store)
	case "change-pass":
		cmd.AdminChangePass(*store)
	case "change-admin":
		cmd.AdminChangeAdmin(*store)
	case "unlock-all":
		cmd.AdminUnlockAll(ctx, *store)
	case "purge":
		cmd.AdminPurge(*store)
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(cmd.ExitFailure)
	}
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir keyring <save|forget|status>")
		os.Exit(cmd.ExitFailure)
	}

	fs := flag.NewFlagSet("keyring "+args[0], flag.ExitOnError)
	store := fs.String("store", "", "Registry file location")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cmd.ExitFailure)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(*store)
	case "forget":
		cmd.KeyringForget(*store)
	case "status":
		cmd.KeyringStatus(*store)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(cmd.ExitFailure)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir completion <bash|zsh|fish>")
		os.Exit(cmd.ExitFailure)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("lockdir - Hide folders behind a password")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockdir <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  setup       Initial setup: create the registry, set user and admin passwords")
	fmt.Println("  lock        Hide a folder behind the user password")
	fmt.Println("  unlock      Reveal a previously locked folder")
	fmt.Println("  admin       Privileged operations (status, password changes, unlock-all)")
	fmt.Println("  keyring     Manage the cached user password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lockdir setup                   # First-time setup")
	fmt.Println("  lockdir lock ~/Documents/taxes  # Hide a folder")
	fmt.Println("  lockdir unlock ~/Documents/taxes")
	fmt.Println("  lockdir admin unlock-all        # Emergency recovery")
	fmt.Println()
	fmt.Println("Use 'lockdir help <command>' for more information about a command.")
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, "Usage: lockdir admin <command> [--store <file>]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Admin commands:")
	fmt.Fprintln(os.Stderr, "  status        Show all tracked folders and their state")
	fmt.Fprintln(os.Stderr, "  change-pass   Change the user password")
	fmt.Fprintln(os.Stderr, "  change-admin  Change the admin password")
	fmt.Fprintln(os.Stderr, "  unlock-all    Emergency unlock of every locked folder")
	fmt.Fprintln(os.Stderr, "  purge         Remove records for folders that are unlocked")
}

func printCommandHelp(command string) {
	switch command {
	case "setup":
		fmt.Println("lockdir setup [--store <file>]")
		fmt.Println()
		fmt.Println("First-time setup. Creates the registry and prompts for two passwords:")
		fmt.Println("the user password (gates lock/unlock) and the admin password (gates")
		fmt.Println("admin operations). Passwords are never stored, only salted PBKDF2")
		fmt.Println("verifiers.")
	case "lock":
		fmt.Println("lockdir lock [--store <file>] <folder>")
		fmt.Println()
		fmt.Println("Hides the folder after verifying the user password. Locking an")
		fmt.Println("already-locked folder fails; unlock it first.")
		fmt.Println()
		fmt.Println("The password is read from the terminal, the LOCKDIR_PASSWORD")
		fmt.Println("environment variable, or the OS keyring ('lockdir keyring save').")
	case "unlock":
		fmt.Println("lockdir unlock [--store <file>] <folder>")
		fmt.Println()
		fmt.Println("Reveals a previously locked folder after verifying the user password.")
		fmt.Println("The record is kept (state 'unlocked') until 'lockdir admin purge'.")
	case "admin":
		printAdminUsage()
	case "keyring":
		fmt.Println("lockdir keyring <save|forget|status> [--store <file>]")
		fmt.Println()
		fmt.Println("Caches the user password in the OS keyring so lock/unlock stop")
		fmt.Println("prompting. 'save' verifies the password first, 'forget' removes it,")
		fmt.Println("'status' reports whether one is cached.")
	case "completion":
		fmt.Println("lockdir completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs a shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(lockdir completion bash)\"")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
