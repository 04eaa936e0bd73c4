package domain

// Permission is a named capability held by an account.
type Permission struct {
	Name string
}

// Known permission names.
const (
	// PermissionReadPermissions allows reading another account's permission set.
	PermissionReadPermissions = "read_permissions"
	// PermissionManagePermissions allows granting and revoking permissions.
	PermissionManagePermissions = "manage_permissions"
)

var knownPermissions = []string{
	PermissionReadPermissions,
	PermissionManagePermissions,
}

// KnownPermissions returns the permission catalog in a stable order.
func KnownPermissions() []string {
	out := make([]string, len(knownPermissions))
	copy(out, knownPermissions)
	return out
}

// IsKnownPermission reports whether name is in the catalog.
func IsKnownPermission(name string) bool {
	for _, p := range knownPermissions {
		if p == name {
			return true
		}
	}
	return false
}
