// Package sampledata bundles a few small animations for the demo commands
// and the mobile binding to fall back on when no file is given.
package sampledata

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed *.json
var files embed.FS

// Names returns the bundled animation file names, sorted.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the bytes of a bundled animation by file name.
func ReadFile(name string) ([]byte, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("no bundled animation %q: %w", name, err)
	}
	return data, nil
}
