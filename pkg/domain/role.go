package domain

// CompanyRole is a company-level role. Roles form a fixed total order;
// privilege comparisons go through Level, never string comparison.
type CompanyRole string

const (
	CompanyRoleMember  CompanyRole = "member"
	CompanyRoleBilling CompanyRole = "billing"
	CompanyRoleAdmin   CompanyRole = "admin"
	CompanyRoleOwner   CompanyRole = "owner"
)

// WorkspaceRole is a workspace-level role, ordered independently of
// company roles.
type WorkspaceRole string

const (
	WorkspaceRoleReader WorkspaceRole = "reader"
	WorkspaceRoleWriter WorkspaceRole = "writer"
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
)

// Ordered lowest to highest privilege. Level is the index.
var (
	companyRoleOrder   = []CompanyRole{CompanyRoleMember, CompanyRoleBilling, CompanyRoleAdmin, CompanyRoleOwner}
	workspaceRoleOrder = []WorkspaceRole{WorkspaceRoleReader, WorkspaceRoleWriter, WorkspaceRoleAdmin}
)

// Level returns the privilege level of the role. Unknown roles map to the
// lowest level so that a corrupt or stale role value never grants privilege.
func (r CompanyRole) Level() int {
	for i, role := range companyRoleOrder {
		if r == role {
			return i
		}
	}
	return 0
}

// Level returns the privilege level of the role. Unknown roles map to the
// lowest level.
func (r WorkspaceRole) Level() int {
	for i, role := range workspaceRoleOrder {
		if r == role {
			return i
		}
	}
	return 0
}

// Valid reports whether the role is one of the known company roles.
func (r CompanyRole) Valid() bool {
	for _, role := range companyRoleOrder {
		if r == role {
			return true
		}
	}
	return false
}

// Valid reports whether the role is one of the known workspace roles.
func (r WorkspaceRole) Valid() bool {
	for _, role := range workspaceRoleOrder {
		if r == role {
			return true
		}
	}
	return false
}

// IsCompanyUpgrade reports whether proposed carries strictly more privilege
// than existing. Equal levels are not an upgrade.
func IsCompanyUpgrade(existing, proposed CompanyRole) bool {
	return proposed.Level() > existing.Level()
}

// IsWorkspaceUpgrade reports whether proposed carries strictly more
// privilege than existing.
func IsWorkspaceUpgrade(existing, proposed WorkspaceRole) bool {
	return proposed.Level() > existing.Level()
}
