package entity

// UserStatus is the lifecycle state of an account, stored as smallint.
type UserStatus int16

const (
	UserStatusUnknown  UserStatus = 0
	UserStatusActive   UserStatus = 2
	UserStatusBanned   UserStatus = 3
	UserStatusInactive UserStatus = 4
)

var userStatusNames = map[UserStatus]string{
	UserStatusActive:   "Active",
	UserStatusBanned:   "Banned",
	UserStatusInactive: "Inactive",
}

func (us UserStatus) String() string {
	if name, ok := userStatusNames[us]; ok {
		return name
	}
	return "Unknown"
}

// Ensure maps values that are not a known status (1 was never assigned) to UserStatusUnknown.
func (us UserStatus) Ensure() UserStatus {
	if _, ok := userStatusNames[us]; ok {
		return us
	}
	return UserStatusUnknown
}

// CanSignIn reports whether the account may start a session.
func (us UserStatus) CanSignIn() bool {
	return us == UserStatusActive
}

// Roles assigned to users. Policies in authz.policies refer to these names.
const (
	RoleCustomer = "customer"
	RoleEditor   = "editor"
	RoleAdmin    = "admin"
)
