package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

func TestCapabilities(t *testing.T) {
	caps := NewCapabilities(enums.PermissionEditOrders, enums.PermissionViewOrders, "UNKNOWN")

	assert.True(t, caps.Has(enums.PermissionEditOrders))
	assert.True(t, caps.HasAll(enums.PermissionViewOrders, enums.PermissionEditOrders))
	assert.False(t, caps.HasAll(enums.PermissionViewOrders, enums.PermissionDeleteOrders))
	assert.False(t, caps.Has("UNKNOWN"))
	assert.Equal(t, []enums.Permission{enums.PermissionEditOrders, enums.PermissionViewOrders}, caps.List())
	assert.True(t, caps.HasAll())
}
