package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(ExitFailure)
	}
}

const bashCompletion = `_lockdir() {
    local cur prev words cword
    _init_completion || return

    local commands="setup lock unlock admin keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        lock|unlock)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--store" -- "$cur"))
            else
                _filedir -d
            fi
            ;;
        admin)
            COMPREPLY=($(compgen -W "status change-pass change-admin unlock-all purge" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save forget status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _lockdir lockdir
`

const zshCompletion = `#compdef lockdir

_lockdir() {
    local -a commands
    commands=(
        'setup:Initial setup, create the registry and both passwords'
        'lock:Hide a folder behind the user password'
        'unlock:Reveal a previously locked folder'
        'admin:Privileged operations (status, password changes, unlock-all)'
        'keyring:Manage the cached password in the OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'lockdir commands' commands
            ;;
        args)
            case "${words[2]}" in
                lock|unlock)
                    _arguments '--store[Registry file location]:file:_files' '*:folder:_directories'
                    ;;
                admin)
                    local -a subcommands
                    subcommands=(
                        'status:List all folder records'
                        'change-pass:Change the user password'
                        'change-admin:Change the admin password'
                        'unlock-all:Emergency unlock of every locked folder'
                        'purge:Remove records for unlocked folders'
                    )
                    _describe -t subcommands 'admin commands' subcommands
                    ;;
                keyring)
                    _values 'keyring commands' save forget status
                    ;;
                completion)
                    _values 'shells' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_lockdir "$@"
`

const fishCompletion = `complete -c lockdir -f

complete -c lockdir -n '__fish_use_subcommand' -a setup -d 'Initial setup'
complete -c lockdir -n '__fish_use_subcommand' -a lock -d 'Hide a folder'
complete -c lockdir -n '__fish_use_subcommand' -a unlock -d 'Reveal a folder'
complete -c lockdir -n '__fish_use_subcommand' -a admin -d 'Privileged operations'
complete -c lockdir -n '__fish_use_subcommand' -a keyring -d 'Manage cached password'
complete -c lockdir -n '__fish_use_subcommand' -a help -d 'Show help'
complete -c lockdir -n '__fish_use_subcommand' -a completion -d 'Generate completions'

complete -c lockdir -n '__fish_seen_subcommand_from lock unlock' -a '(__fish_complete_directories)'
complete -c lockdir -n '__fish_seen_subcommand_from admin' -a 'status change-pass change-admin unlock-all purge'
complete -c lockdir -n '__fish_seen_subcommand_from keyring' -a 'save forget status'
complete -c lockdir -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
`
