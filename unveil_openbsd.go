// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// restrict unveils only the named paths, with their permissions, and then
// locks the filesystem view.  Empty paths and "-" (stdio) are skipped.
func restrict(paths map[string]string) error {
	for path, perm := range paths {
		if path == "" || path == "-" {
			continue
		}
		if err := unix.Unveil(path, perm); err != nil {
			return fmt.Errorf("unveil %s: %w", path, err)
		}
	}
	return unix.UnveilBlock()
}
