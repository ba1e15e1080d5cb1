package store

import "errors"

// ErrInvalidPatch is returned by partial updates that set no field.
var ErrInvalidPatch = errors.New("patch sets no field")

type scanner interface{ Scan(...any) error }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
