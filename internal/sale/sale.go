// Package sale holds the TokenSale pricing rules and the checks commands
// run against balances read before and after a transaction.
package sale

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrMismatch is returned when an observed balance change differs from the
// amount the sale rules predict.
var ErrMismatch = errors.New("balance change does not match expected amount")

// ExpectedTokens is the token amount bought with eth wei at ratio.
func ExpectedTokens(eth, ratio *big.Int) *big.Int {
	return new(big.Int).Mul(eth, ratio)
}

// ExpectedRefund is the wei returned for tokens, rounded down.
func ExpectedRefund(tokens, ratio *big.Int) (*big.Int, error) {
	if ratio.Sign() <= 0 {
		return nil, fmt.Errorf("invalid ratio %s", ratio)
	}
	return new(big.Int).Quo(tokens, ratio), nil
}

// BurnRefund is the token amount paid back for returning an NFT.
func BurnRefund(price *big.Int) *big.Int {
	return new(big.Int).Quo(price, big.NewInt(2))
}

// Withdrawable is what a withdrawal of requested actually moves.
func Withdrawable(requested, available *big.Int) *big.Int {
	if requested.Cmp(available) < 0 {
		return new(big.Int).Set(requested)
	}
	return new(big.Int).Set(available)
}

// Delta is after - before.
func Delta(before, after *big.Int) *big.Int {
	return new(big.Int).Sub(after, before)
}

func check(what string, want, got *big.Int) error {
	if want.Cmp(got) != 0 {
		return fmt.Errorf("%s: expected %s, got %s: %w", what, want, got, ErrMismatch)
	}
	return nil
}

// VerifyBuy checks a buyTokens of eth wei: the buyer gained eth*ratio
// tokens and spent eth plus gasCost wei.
func VerifyBuy(eth, ratio, gasCost, tokenBefore, tokenAfter, ethBefore, ethAfter *big.Int) error {
	if err := check("tokens received", ExpectedTokens(eth, ratio), Delta(tokenBefore, tokenAfter)); err != nil {
		return err
	}
	spent := new(big.Int).Add(eth, gasCost)
	return check("ETH spent", spent, Delta(ethAfter, ethBefore))
}

// VerifyReturn checks a returnTokens of tokens: the token balance dropped
// by tokens and the ETH balance grew by tokens/ratio minus gasCost.
func VerifyReturn(tokens, ratio, gasCost, tokenBefore, tokenAfter, ethBefore, ethAfter *big.Int) error {
	if err := check("tokens returned", tokens, Delta(tokenAfter, tokenBefore)); err != nil {
		return err
	}
	refund, err := ExpectedRefund(tokens, ratio)
	if err != nil {
		return err
	}
	return check("ETH refunded", new(big.Int).Sub(refund, gasCost), Delta(ethBefore, ethAfter))
}

// VerifyBuyNFT checks that buying an NFT cost exactly price tokens and
// that owner is the buyer.
func VerifyBuyNFT(price, tokenBefore, tokenAfter *big.Int, buyer, owner fmt.Stringer) error {
	if err := check("tokens paid", price, Delta(tokenAfter, tokenBefore)); err != nil {
		return err
	}
	if buyer.String() != owner.String() {
		return fmt.Errorf("NFT owner: expected %s, got %s: %w", buyer, owner, ErrMismatch)
	}
	return nil
}

// VerifyReturnNFT checks that burning an NFT refunded price/2 tokens.
func VerifyReturnNFT(price, tokenBefore, tokenAfter *big.Int) error {
	return check("tokens refunded", BurnRefund(price), Delta(tokenBefore, tokenAfter))
}

// VerifyWithdraw checks that the owner received min(requested, available).
func VerifyWithdraw(requested, available, ownerBefore, ownerAfter *big.Int) error {
	return check("tokens withdrawn", Withdrawable(requested, available), Delta(ownerBefore, ownerAfter))
}
