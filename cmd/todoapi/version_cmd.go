package main

import (
	"fmt"
	"runtime"
)

func versionCommand(v VersionInfo) func(args []string) error {
	return func(args []string) error {
		fmt.Fprintf(stdout, "todoapi %s (commit: %s, built: %s, %s)\n", v.Version, v.Commit, v.Date, runtime.Version())
		return nil
	}
}
