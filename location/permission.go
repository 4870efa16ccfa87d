package location

import (
	"fmt"
	"strings"
)

// PermissionStatus is the location authorization granted by the user
type PermissionStatus int

const (
	NotDetermined PermissionStatus = iota
	Restricted
	Denied
	Authorized
)

var (
	ErrPermissionDenied  = fmt.Errorf("location permission denied")
	ErrInvalidPermission = fmt.Errorf("invalid location permission")
)

func (s PermissionStatus) String() string {
	switch s {
	case Restricted:
		return "restricted"
	case Denied:
		return "denied"
	case Authorized:
		return "authorized"
	}
	return "not_determined"
}

// MarshalText lets the status be rendered as its name in JSON
func (s PermissionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Refused reports whether the user has refused location access for good
func (s PermissionStatus) Refused() bool {
	return s == Denied || s == Restricted
}

// ParsePermission reads a permission value as sent by the mobile client
func ParsePermission(s string) (PermissionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "not_determined", "undetermined":
		return NotDetermined, nil
	case "restricted":
		return Restricted, nil
	case "denied":
		return Denied, nil
	case "granted", "authorized", "authorized_when_in_use", "authorized_always":
		return Authorized, nil
	}

	return NotDetermined, ErrInvalidPermission
}
