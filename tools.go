//go:build tools

package main

// Build-time tooling kept versioned with the module.
import (
	_ "github.com/mgechev/revive"
	_ "golang.org/x/lint/golint"
	_ "honnef.co/go/tools/cmd/staticcheck"
)
