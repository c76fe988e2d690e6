// Package main is the single-binary entrypoint for LogicalX.
// LogicalX hands out daily logic puzzles and tracks XP, levels and streaks.
package main

import "github.com/logicalx/logicalx/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
