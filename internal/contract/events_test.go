package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

func addrTopic(a common.Address) common.Hash { return common.BytesToHash(a.Bytes()) }

func TestDecodeTransfers(t *testing.T) {
	other := common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
	logs := []*types.Log{
		{
			Address: tokenAddr,
			Topics:  []common.Hash{transferTopic, addrTopic(common.Address{}), addrTopic(account2)},
			Data:    common.BigToHash(big.NewInt(500)).Bytes(),
			Index:   0,
		},
		// same event from another contract
		{
			Address: other,
			Topics:  []common.Hash{transferTopic, addrTopic(deployer), addrTopic(account2)},
			Data:    common.BigToHash(big.NewInt(1)).Bytes(),
			Index:   1,
		},
		// Approval
		{
			Address: tokenAddr,
			Topics:  []common.Hash{common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"), addrTopic(deployer), addrTopic(account2)},
			Data:    common.BigToHash(big.NewInt(7)).Bytes(),
			Index:   2,
		},
		{
			Address: tokenAddr,
			Topics:  []common.Hash{transferTopic, addrTopic(account2), addrTopic(deployer)},
			Data:    common.BigToHash(big.NewInt(20)).Bytes(),
			Index:   3,
		},
		nil,
	}

	got, err := DecodeTransfers(tokenAddr, logs)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, common.Address{}, got[0].From)
	assert.Equal(t, account2, got[0].To)
	assert.Equal(t, int64(500), got[0].Value.Int64())
	assert.Equal(t, uint(3), got[1].LogIndex)
	assert.Equal(t, deployer, got[1].To)
}

func TestDecodeNFTTransfers(t *testing.T) {
	nftAddr := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	logs := []*types.Log{
		// an ERC-20 shaped Transfer is ignored
		{
			Address: nftAddr,
			Topics:  []common.Hash{transferTopic, addrTopic(deployer), addrTopic(account2)},
			Data:    common.BigToHash(big.NewInt(1)).Bytes(),
		},
		{
			Address: nftAddr,
			Topics:  []common.Hash{transferTopic, addrTopic(common.Address{}), addrTopic(account2), common.BigToHash(big.NewInt(7))},
			Index:   4,
		},
	}

	got, err := DecodeNFTTransfers(nftAddr, logs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, common.Address{}, got[0].From)
	assert.Equal(t, account2, got[0].To)
	assert.Equal(t, int64(7), got[0].TokenID.Int64())
	assert.Equal(t, uint(4), got[0].LogIndex)

	none, err := DecodeNFTTransfers(tokenAddr, logs)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDecodeTransfersMalformedData(t *testing.T) {
	logs := []*types.Log{{
		Address: tokenAddr,
		Topics:  []common.Hash{transferTopic, addrTopic(deployer), addrTopic(account2)},
		Data:    []byte{0x01},
	}}
	_, err := DecodeTransfers(tokenAddr, logs)
	assert.Error(t, err)
}
