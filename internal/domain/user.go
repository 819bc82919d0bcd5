// Package domain holds the relay entities and the display name rules they enforce.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MaxDisplayNameLen is measured in runes after trimming.
const MaxDisplayNameLen = 64

var (
	ErrInvalidName = errors.New("invalid name")
	ErrNameEmpty   = fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	ErrNameTooLong = fmt.Errorf("%w: name too long", ErrInvalidName)
)

var folder = cases.Fold()

// NormalizeName trims the raw name a client sent and validates it.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// FoldName returns the key used for collision checks within a room.
func FoldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}
