package models

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// RoleOf reports the role of username given the distinguished admin identity.
func RoleOf(username, adminUsername string) string {
	if username == adminUsername {
		return RoleAdmin
	}
	return RoleCustomer
}
