//go:build !linux

package main

import "io/fs"

func platformAttributes(info fs.FileInfo) *uint32 {
	return nil
}
