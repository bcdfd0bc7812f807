// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

//go:build !openbsd

package main

// restrict is a no-op where unveil(2) is unavailable.
func restrict(map[string]string) error { return nil }
