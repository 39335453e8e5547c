package contract

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Role is an AccessControl role code. Roles are compared by equality only.
type Role [32]byte

// Hex returns the 0x-prefixed role code.
func (r Role) Hex() string { return hexutil.Encode(r[:]) }

// DefaultAdminRole is the name of the all-zero admin role.
const DefaultAdminRole = "DEFAULT_ADMIN_ROLE"

// RoleID computes the code OpenZeppelin assigns to a role name:
// keccak256(name), except DEFAULT_ADMIN_ROLE which is zero.
func RoleID(name string) Role {
	var r Role
	if name == DefaultAdminRole {
		return r
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	copy(r[:], h.Sum(nil))
	return r
}

// AccessControl helpers shared by MyToken and MyNFT.

// Role reads a role code by its getter name, e.g. "MINTER_ROLE".
func (h *Handle) Role(ctx context.Context, name string) (Role, error) {
	m, ok := h.ABI.Methods[name]
	if !ok || len(m.Inputs) != 0 || len(m.Outputs) != 1 || m.Outputs[0].Type.String() != "bytes32" {
		return Role{}, fmt.Errorf("unknown role %q", name)
	}
	v, err := one(h.Read(ctx, name))
	if err != nil {
		return Role{}, err
	}
	b, ok := v.([32]byte)
	if !ok {
		return Role{}, fmt.Errorf("unexpected role type %T", v)
	}
	return Role(b), nil
}

// MinterRole reads MINTER_ROLE.
func (h *Handle) MinterRole(ctx context.Context) (Role, error) {
	return h.Role(ctx, config.MinterRole)
}

func (h *Handle) HasRole(ctx context.Context, role Role, account common.Address) (bool, error) {
	return asBool(h.Read(ctx, "hasRole", [32]byte(role), account))
}

func (h *Handle) GrantRole(ctx context.Context, role Role, account common.Address) (*chain.Receipt, error) {
	return h.Transact(ctx, TxOpts{GasFallback: config.GasLimitContractCall}, "grantRole", [32]byte(role), account)
}
