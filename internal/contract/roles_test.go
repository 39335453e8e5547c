package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleID(t *testing.T) {
	assert.Equal(t, "0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6",
		RoleID("MINTER_ROLE").Hex())
	assert.Equal(t, Role{}, RoleID(DefaultAdminRole))
	assert.NotEqual(t, RoleID("MINTER_ROLE"), RoleID("BURNER_ROLE"))
}
