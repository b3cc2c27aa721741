// Package storage defines the text persistence used for populations and genomes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a requested document is missing.
var ErrNotFound = errors.New("document not found")

// Store reads and writes named text documents. Writes replace the whole document.
// Implementations surface I/O failures and never retry.
type Store interface {
	ReadText(ctx context.Context, name string) (string, error)
	WriteText(ctx context.Context, name, text string) error
}

// ValidateName rejects names that would escape a store's namespace.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("document name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
