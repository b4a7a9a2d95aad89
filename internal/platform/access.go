package platform

import "errors"

// Access is a bitmask of the permissions a caller intends to use on a file.
type Access uint8

const (
	Read Access = 1 << iota
	Write
)

// ErrPermission is wrapped by CheckAccess failures.
var ErrPermission = errors.New("permission denied")

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Read | Write:
		return "read/write"
	default:
		return "none"
	}
}
