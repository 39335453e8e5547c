package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Transfer is a decoded ERC-20 Transfer event.
type Transfer struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	LogIndex uint
}

// NFTTransfer is a decoded ERC-721 Transfer event. From is zero for
// mints and To is zero for burns.
type NFTTransfer struct {
	From     common.Address
	To       common.Address
	TokenID  *big.Int
	LogIndex uint
}

// DecodeTransfers returns the ERC-20 Transfer events emitted by emitter in
// logs, in log order. Logs of other contracts or events are skipped.
func DecodeTransfers(emitter common.Address, logs []*types.Log) ([]Transfer, error) {
	b, _ := GetBuiltin(KindToken)
	var out []Transfer
	err := eachTransfer(b.ABI, emitter, logs, 3, func(m map[string]interface{}, l *types.Log) error {
		from, ok1 := m["from"].(common.Address)
		to, ok2 := m["to"].(common.Address)
		value, ok3 := m["value"].(*big.Int)
		if !ok1 || !ok2 || !ok3 {
			return fmt.Errorf("malformed Transfer log %d", l.Index)
		}
		out = append(out, Transfer{From: from, To: to, Value: value, LogIndex: l.Index})
		return nil
	})
	return out, err
}

// DecodeNFTTransfers returns the ERC-721 Transfer events emitted by emitter.
func DecodeNFTTransfers(emitter common.Address, logs []*types.Log) ([]NFTTransfer, error) {
	b, _ := GetBuiltin(KindNFT)
	var out []NFTTransfer
	err := eachTransfer(b.ABI, emitter, logs, 4, func(m map[string]interface{}, l *types.Log) error {
		from, ok1 := m["from"].(common.Address)
		to, ok2 := m["to"].(common.Address)
		id, ok3 := m["tokenId"].(*big.Int)
		if !ok1 || !ok2 || !ok3 {
			return fmt.Errorf("malformed Transfer log %d", l.Index)
		}
		out = append(out, NFTTransfer{From: from, To: to, TokenID: id, LogIndex: l.Index})
		return nil
	})
	return out, err
}

// eachTransfer decodes every Transfer log of emitter with exactly topicCount
// topics. ERC-20 and ERC-721 share the event signature and differ only in
// whether the third argument is indexed.
func eachTransfer(a abi.ABI, emitter common.Address, logs []*types.Log, topicCount int, fn func(map[string]interface{}, *types.Log) error) error {
	ev, ok := a.Events["Transfer"]
	if !ok {
		return errors.New("ABI has no Transfer event")
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	for _, l := range logs {
		if l == nil || l.Address != emitter || len(l.Topics) != topicCount || l.Topics[0] != ev.ID {
			continue
		}
		m := make(map[string]interface{})
		if len(l.Data) > 0 {
			if err := ev.Inputs.UnpackIntoMap(m, l.Data); err != nil {
				return fmt.Errorf("decoding Transfer data: %w", err)
			}
		}
		if err := abi.ParseTopicsIntoMap(m, indexed, l.Topics[1:]); err != nil {
			return fmt.Errorf("decoding Transfer topics: %w", err)
		}
		if err := fn(m, l); err != nil {
			return err
		}
	}
	return nil
}
