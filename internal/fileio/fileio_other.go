//go:build !linux

package fileio

import (
	"os"

	"github.com/radyx/radyx/internal/radyxerr"
)

// openOpportunistic has no opportunistic flag to offer on non-Linux
// platforms; Open falls back to a plain os.Open immediately.
func openOpportunistic(path string) (*os.File, error) {
	return nil, radyxerr.ErrIoOpen
}
