//go:build !windows

package mount

import (
	"fmt"
	"runtime"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// unsupportedDrives is used where there are no drive letters
type unsupportedDrives struct{}

// NewDrives returns the system drive letter query
func NewDrives() Drives {
	return unsupportedDrives{}
}

// UsedLetters always fails off Windows
func (unsupportedDrives) UsedLetters() ([]string, error) {
	return nil, fmt.Errorf("%w: drive letters are not available on %s", utils.ErrUnsupportedPlatform, runtime.GOOS)
}
