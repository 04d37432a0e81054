package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleVendor   = "VENDOR"
	RoleCustomer = "CUSTOMER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full marketplace access with all privileges",
	},
	{
		Code:        RoleVendor,
		Name:        "Vendor",
		Description: "Runs one or more stores",
	},
	{
		Code:        RoleCustomer,
		Name:        "Customer",
		Description: "Shops on the marketplace",
	},
}
