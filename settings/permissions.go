package settings

// GenericPermissionSettings encodes a three-axis ACL (commands/roles/users)
// per design §4.6. Each axis has its own default-allow flag plus an
// allowed/denied set; dispatch/acl.go evaluates all three before a command
// runs.
type GenericPermissionSettings struct {
	DefaultAllowAllCommands bool
	DefaultAllowAllRoles    bool
	DefaultAllowAllUsers    bool

	AllowedCommands map[string]struct{}
	DeniedCommands  map[string]struct{}
	AllowedRoles    map[string]struct{}
	DeniedRoles     map[string]struct{}
	AllowedUsers    map[string]struct{}
	DeniedUsers     map[string]struct{}
}

// DefaultGenericPermissionSettings returns the all-allowed default (design
// §4.6: empty allow/deny sets plus default_allow_all == true permits
// everything).
func DefaultGenericPermissionSettings() GenericPermissionSettings {
	return GenericPermissionSettings{
		DefaultAllowAllCommands: true,
		DefaultAllowAllRoles:    true,
		DefaultAllowAllUsers:    true,
		AllowedCommands:         make(map[string]struct{}),
		DeniedCommands:          make(map[string]struct{}),
		AllowedRoles:            make(map[string]struct{}),
		DeniedRoles:             make(map[string]struct{}),
		AllowedUsers:            make(map[string]struct{}),
		DeniedUsers:             make(map[string]struct{}),
	}
}

// IsCommandAllowed evaluates the design §4.6 rule for the command axis:
// allowed iff (allowed.empty ∧ denied.empty ∧ default) ∨
// (default ∧ allowed.empty ∧ ¬denied.contains(x)) ∨
// (allowed.contains(x) ∧ ¬denied.contains(x)).
func (p GenericPermissionSettings) IsCommandAllowed(command string) bool {
	return isAllowed(p.AllowedCommands, p.DeniedCommands, p.DefaultAllowAllCommands, command)
}

// IsRoleAllowed evaluates the same rule for the role axis.
func (p GenericPermissionSettings) IsRoleAllowed(roleID string) bool {
	return isAllowed(p.AllowedRoles, p.DeniedRoles, p.DefaultAllowAllRoles, roleID)
}

// IsUserAllowed evaluates the same rule for the user axis.
func (p GenericPermissionSettings) IsUserAllowed(userID string) bool {
	return isAllowed(p.AllowedUsers, p.DeniedUsers, p.DefaultAllowAllUsers, userID)
}

func isAllowed(allowed, denied map[string]struct{}, defaultAllowAll bool, x string) bool {
	_, isDenied := denied[x]
	_, isAllowed := allowed[x]
	switch {
	case len(allowed) == 0 && len(denied) == 0 && defaultAllowAll:
		return true
	case defaultAllowAll && len(allowed) == 0 && !isDenied:
		return true
	case isAllowed && !isDenied:
		return true
	default:
		return false
	}
}
