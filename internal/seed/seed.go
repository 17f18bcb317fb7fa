// Package seed provides the sample drafts inserted into an empty catalog.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/uriel/internal/catalog"
)

//go:embed samples.toml
var samplesTOML []byte

// File is the on-disk layout of a draft set.
type File struct {
	Drafts []catalog.Draft `toml:"drafts"`
}

// Parse decodes a TOML draft set and validates every entry.
func Parse(data []byte) ([]catalog.Draft, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing drafts: %w", err)
	}
	for i, d := range f.Drafts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
	}
	return f.Drafts, nil
}

// Builtin returns the embedded sample set in file order.
func Builtin() []catalog.Draft {
	drafts, err := Parse(samplesTOML)
	if err != nil {
		// The embedded file is part of the build.
		panic(err)
	}
	return drafts
}

// Load reads drafts from path, or returns the built-in set when path is empty.
func Load(path string) ([]catalog.Draft, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	drafts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return drafts, nil
}
