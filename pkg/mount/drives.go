package mount

import (
	"fmt"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// Drives reports drive letters in use by local and network drives
type Drives interface {
	UsedLetters() ([]string, error)
}

// lettersFromBitmask converts a GetLogicalDrives bitmask (bit 0 = A) to letters
func lettersFromBitmask(mask uint32) []string {
	var letters []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			letters = append(letters, string(rune('A'+i)))
		}
	}
	return letters
}

// FreeLetters returns C..Z minus every letter in the used sets, ascending.
// A and B are reserved and never returned.
func FreeLetters(used ...[]string) []string {
	taken := make(map[string]bool)
	for _, set := range used {
		for _, letter := range set {
			taken[utils.NormalizeDriveLetter(letter)] = true
		}
	}

	var free []string
	for c := 'C'; c <= 'Z'; c++ {
		letter := string(c)
		if !taken[letter] {
			free = append(free, letter)
		}
	}
	return free
}

// LastFreeLetter returns the highest free letter
func LastFreeLetter(free []string) (string, error) {
	if len(free) == 0 {
		return "", fmt.Errorf("%w: C through Z are all in use", utils.ErrNoFreeLetter)
	}
	return free[len(free)-1], nil
}

// Contains reports whether letters includes letter
func Contains(letters []string, letter string) bool {
	letter = utils.NormalizeDriveLetter(letter)
	for _, l := range letters {
		if utils.NormalizeDriveLetter(l) == letter {
			return true
		}
	}
	return false
}
