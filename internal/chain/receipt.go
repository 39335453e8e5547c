package chain

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt holds the on-chain receipt of a mined transaction.
type Receipt struct {
	TxHash            common.Hash
	Status            uint64 // 1 = success, 0 = reverted
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int       // nil when the node omitted it
	ContractAddress   common.Address // non-zero when a contract was deployed
	Logs              []*types.Log
}

func fromTypesReceipt(r *types.Receipt) *Receipt {
	out := &Receipt{
		TxHash:            r.TxHash,
		Status:            r.Status,
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
		ContractAddress:   r.ContractAddress,
		Logs:              r.Logs,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool { return r.Status == types.ReceiptStatusSuccessful }

// GasCost is effective gas price times gas used, or zero when the price is
// unknown.
func (r *Receipt) GasCost() *big.Int {
	if r.EffectiveGasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(r.EffectiveGasPrice, new(big.Int).SetUint64(r.GasUsed))
}

// GasReport is the printable gas summary of a receipt.
type GasReport struct {
	Price     string // effective gas price in ETH
	Used      string
	TotalCost string // price * used in ETH
}

// NotAvailable is rendered for values the node did not report.
const NotAvailable = "N/A"

// Gas summarises r for display.
func (r *Receipt) Gas() GasReport {
	rep := GasReport{Price: NotAvailable, Used: NotAvailable, TotalCost: NotAvailable}
	if r.GasUsed > 0 {
		rep.Used = strconv.FormatUint(r.GasUsed, 10)
	}
	if r.EffectiveGasPrice != nil {
		rep.Price = FormatEther(r.EffectiveGasPrice)
		rep.TotalCost = FormatEther(r.GasCost())
	}
	return rep
}

// TotalGasCost sums GasCost over receipts. Nil receipts are skipped.
func TotalGasCost(receipts ...*Receipt) *big.Int {
	total := new(big.Int)
	for _, r := range receipts {
		if r != nil {
			total.Add(total, r.GasCost())
		}
	}
	return total
}
