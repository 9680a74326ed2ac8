package naming

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultLength is the number of hex characters in a random name.
const DefaultLength = 16

// DefaultSeparator joins the random part and the old stem.
const DefaultSeparator = "_"

// Mode selects how the random part relates to the old file name.
type Mode string

const (
	// ModeReplace drops the old stem.
	ModeReplace Mode = ""
	// ModePrefix puts the random part before the old stem.
	ModePrefix Mode = "prefix"
	// ModeSuffix puts the random part after the old stem.
	ModeSuffix Mode = "suffix"
)

// ParseMode accepts "", "prefix" or "suffix" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeReplace, ModePrefix, ModeSuffix:
		return m, nil
	default:
		return "", fmt.Errorf("invalid append mode %q (want prefix or suffix)", s)
	}
}

// RandomOptions configures RandomName.
type RandomOptions struct {
	Mode      Mode
	Separator string
	// Length is the requested number of hex characters. Odd values are
	// rounded down since each random byte yields two characters.
	Length int
}

// RandomName returns a sibling path of p whose stem is replaced, prefixed
// or suffixed by a random hexadecimal string. The extension is kept.
func RandomName(p string, opts RandomOptions) (string, error) {
	if opts.Length <= 0 {
		return "", fmt.Errorf("random name length must be positive, got %d", opts.Length)
	}
	buf := make([]byte, opts.Length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random name: %w", err)
	}
	return withRandom(p, hex.EncodeToString(buf), opts), nil
}

func withRandom(p, random string, opts RandomOptions) string {
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(filepath.Base(p), ext)

	name := random
	switch opts.Mode {
	case ModePrefix:
		name = random + opts.Separator + stem
	case ModeSuffix:
		name = stem + opts.Separator + random
	}
	return filepath.Join(filepath.Dir(p), name+ext)
}
