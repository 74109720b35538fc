package enums

import "fmt"

// Permission is a capability string carried in access tokens.
type Permission string

const (
	PermissionViewOrders         Permission = "VIEW_ORDERS"
	PermissionCreateOrder        Permission = "CREATE_ORDER"
	PermissionEditOrders         Permission = "EDIT_ORDERS"
	PermissionDeleteOrders       Permission = "DELETE_ORDERS"
	PermissionViewInventory      Permission = "VIEW_INVENTORY"
	PermissionEditInventory      Permission = "EDIT_INVENTORY"
	PermissionViewProviderOrders Permission = "VIEW_PROVIDER_ORDERS"
	PermissionEditProviderOrders Permission = "EDIT_PROVIDER_ORDERS"
	PermissionViewCustomers      Permission = "VIEW_CUSTOMERS"
	PermissionEditCustomers      Permission = "EDIT_CUSTOMERS"
	PermissionViewProviders      Permission = "VIEW_PROVIDERS"
	PermissionEditProviders      Permission = "EDIT_PROVIDERS"
	PermissionViewCategories     Permission = "VIEW_CATEGORIES"
	PermissionEditCategories     Permission = "EDIT_CATEGORIES"
)

var validPermissions = []Permission{
	PermissionViewOrders,
	PermissionCreateOrder,
	PermissionEditOrders,
	PermissionDeleteOrders,
	PermissionViewInventory,
	PermissionEditInventory,
	PermissionViewProviderOrders,
	PermissionEditProviderOrders,
	PermissionViewCustomers,
	PermissionEditCustomers,
	PermissionViewProviders,
	PermissionEditProviders,
	PermissionViewCategories,
	PermissionEditCategories,
}

// AllPermissions returns every known permission, in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, len(validPermissions))
	copy(out, validPermissions)
	return out
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
