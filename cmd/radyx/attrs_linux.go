//go:build linux

package main

import "io/fs"

// platformAttributes maps the low bits of the Unix file mode into the
// attribute word 7z's FilesInfo stores, matching p7zip's convention of
// stashing the Unix mode in the upper 16 bits with a marker in the low
// word (bit 15 set) so a reader can tell a Unix-origin archive from a
// Windows one.
func platformAttributes(info fs.FileInfo) *uint32 {
	const unixExtensionMarker = 0x8000
	attr := uint32(info.Mode().Perm()) << 16
	attr |= unixExtensionMarker
	return &attr
}
