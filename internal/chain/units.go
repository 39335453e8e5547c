package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of ETH and of MyToken.
const EtherDecimals = 18

// FormatEther renders wei as ETH without trailing zeros ("1.5", "10").
func FormatEther(wei *big.Int) string { return FormatUnits(wei, EtherDecimals) }

// FormatUnits renders v scaled down by 10^decimals. The result is exact.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, div, new(big.Int))

	s := whole.String()
	if frac.Sign() != 0 {
		f := frac.String()
		f = strings.Repeat("0", decimals-len(f)) + f
		s += "." + strings.TrimRight(f, "0")
	}
	if neg {
		s = "-" + s
	}
	return s
}

// ParseEther parses a decimal ETH amount into wei.
func ParseEther(s string) (*big.Int, error) { return ParseUnits(s, EtherDecimals) }

// ParseUnits parses a decimal string into base units with the given number
// of decimals. More fractional digits than decimals is an error.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	in := strings.TrimSpace(s)
	neg := strings.HasPrefix(in, "-")
	in = strings.TrimPrefix(in, "-")

	whole, frac, hasDot := strings.Cut(in, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if hasDot && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
