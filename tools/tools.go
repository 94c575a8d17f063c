//go:build tools

// Package tools pins development tool dependencies in go.mod.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
