// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

// Masks are all ones for true and zero for false.  Arguments must be below
// 2^31.

func zeroMask(x uint32) uint32 {
	return uint32(int64(uint64(x)-1) >> 63)
}

func eqMask(x, y uint32) uint32 {
	return zeroMask(x ^ y)
}

func ltMask(x, y uint32) uint32 {
	return uint32(int32(x-y) >> 31)
}
