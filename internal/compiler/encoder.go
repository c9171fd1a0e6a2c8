package compiler

import (
	"fmt"
	"strconv"

	"github.com/aretw0/gleaner/pkg/domain"
)

// None is the constant used when no disk qualifies.
const None = "none"

// Encode describes an action taken in a state as two facts: the disk that
// moves (the smallest disk on the source peg) and the disk it lands on (the
// smallest disk on the destination peg). Disks are numbered from 1, smallest
// first. Either disk is None when its peg is empty, and both are None when the
// action label is malformed. Encode never fails.
func Encode(s domain.State, actionLabel string) []string {
	a, err := domain.ParseAction(actionLabel)
	if err != nil {
		return []string{movingDisk(None), diskBelow(None)}
	}
	return []string{
		movingDisk(smallestOn(s, a.From)),
		diskBelow(smallestOn(s, a.To)),
	}
}

func smallestOn(s domain.State, peg int) string {
	for i, p := range s {
		if p == peg {
			return strconv.Itoa(i + 1)
		}
	}
	return None
}

func movingDisk(d string) string { return fmt.Sprintf("moving_disk(%s)", d) }

func diskBelow(d string) string { return fmt.Sprintf("disk_below(%s)", d) }
