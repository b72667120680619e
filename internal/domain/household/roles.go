package household

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAdminFinance Role = "admin_finance"
	RoleAdminFunc    Role = "admin_func"
	RoleResident     Role = "resident"
)

// Capability is a coarse permission granted by a role. Operations check one
// capability at their boundary instead of comparing role strings.
type Capability string

const (
	CapManageFinance   Capability = "manage_finance"
	CapManageRoles     Capability = "manage_roles"
	CapManageHousehold Capability = "manage_household"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapManageFinance:   {},
		CapManageRoles:     {},
		CapManageHousehold: {},
	},
	RoleAdminFinance: {
		CapManageFinance: {},
	},
	RoleAdminFunc: {
		CapManageHousehold: {},
	},
	RoleResident: {},
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

func (r Role) Can(capability Capability) bool {
	capabilities, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = capabilities[capability]
	return ok
}
