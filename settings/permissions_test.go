package settings

import "testing"

func TestIsAllowedDefaultAllowAllWithEmptySets(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	if !p.IsCommandAllowed("play") {
		t.Fatal("expected default-allow-all with empty sets to allow everything")
	}
	if !p.IsRoleAllowed("role-1") {
		t.Fatal("expected default-allow-all with empty sets to allow everything")
	}
	if !p.IsUserAllowed("user-1") {
		t.Fatal("expected default-allow-all with empty sets to allow everything")
	}
}

func TestIsAllowedDenyListOverridesDefault(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	p.DeniedCommands["skip"] = struct{}{}

	if p.IsCommandAllowed("skip") {
		t.Fatal("denied command must not be allowed even with default-allow-all")
	}
	if !p.IsCommandAllowed("play") {
		t.Fatal("non-denied command must still be allowed")
	}
}

func TestIsAllowedExplicitAllowListRestricts(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	p.DefaultAllowAllCommands = false
	p.AllowedCommands["play"] = struct{}{}

	if !p.IsCommandAllowed("play") {
		t.Fatal("explicitly allowed command must be allowed")
	}
	if p.IsCommandAllowed("skip") {
		t.Fatal("command absent from a restrictive allow list must not be allowed")
	}
}

func TestIsAllowedDenyWinsOverAllow(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	p.DefaultAllowAllCommands = false
	p.AllowedCommands["play"] = struct{}{}
	p.DeniedCommands["play"] = struct{}{}

	if p.IsCommandAllowed("play") {
		t.Fatal("a command in both allow and deny sets must be denied")
	}
}

func TestIsAllowedNoDefaultNoAllowListDeniesEverything(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	p.DefaultAllowAllRoles = false

	if p.IsRoleAllowed("role-1") {
		t.Fatal("with default-allow-all off and an empty allow list, nothing should be allowed")
	}
}

func TestIsAllowedAxesAreIndependent(t *testing.T) {
	p := DefaultGenericPermissionSettings()
	p.DeniedUsers["user-1"] = struct{}{}

	if p.IsUserAllowed("user-1") {
		t.Fatal("denied user must not be allowed")
	}
	if !p.IsCommandAllowed("play") || !p.IsRoleAllowed("role-1") {
		t.Fatal("denying a user must not affect the command or role axes")
	}
}
