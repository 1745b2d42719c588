// Command todoapi serves the TODO list API and runs its maintenance tasks.
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	registry := NewCommandRegistry(VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	registerCommands(registry)

	if err := registry.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "serve",
		Description: "Run the HTTP API and the purge worker",
		Usage:       "todoapi serve [--config path]",
		Examples: []string{
			"todoapi serve --config todoapi.yaml",
			"STORE_DRIVER=memory todoapi serve",
		},
		Run: serveCommand(r.version),
	})

	r.Register(&Command{
		Name:        "migrate",
		Description: "Apply or roll back database migrations",
		Usage:       "todoapi migrate [--config path] [--down N] [--status]",
		Examples: []string{
			"todoapi migrate --config todoapi.yaml",
			"todoapi migrate --down 1",
			"todoapi migrate --status",
		},
		Run: migrateCommand,
	})

	r.Register(&Command{
		Name:        "purge",
		Description: "Permanently delete tombstones older than the undo window",
		Usage:       "todoapi purge [--config path]",
		Examples:    []string{"todoapi purge --config todoapi.yaml"},
		Run:         purgeCommand,
	})

	r.Register(&Command{
		Name:        "validate",
		Description: "Validate a configuration file",
		Usage:       "todoapi validate <config-file>",
		Examples: []string{
			"todoapi validate todoapi.yaml",
			"todoapi validate todoapi.toml",
		},
		Run: validateCommand,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "todoapi version",
		Run:         versionCommand(r.version),
	})

	r.Register(&Command{
		Name:        "help",
		Description: "Show help information",
		Usage:       "todoapi help [command]",
		Examples:    []string{"todoapi help", "todoapi help serve"},
		Run: func(args []string) error {
			if len(args) > 0 {
				if cmd, ok := r.commands[args[0]]; ok {
					cmd.PrintUsage(stdout)
					return nil
				}
				return fmt.Errorf("unknown command: %s", args[0])
			}
			r.PrintHelp(stdout)
			return nil
		},
	})
}
