//go:build windows

package mount

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// logicalDrives queries the GetLogicalDrives bitmask
type logicalDrives struct{}

// NewDrives returns the system drive letter query
func NewDrives() Drives {
	return logicalDrives{}
}

// UsedLetters returns letters backing local and network drives
func (logicalDrives) UsedLetters() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDrives failed: %w", err)
	}
	return lettersFromBitmask(mask), nil
}
