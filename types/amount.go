// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// AmountDecimals is the number of decimal places carried by an Amount
const AmountDecimals = 9

// Coin is one whole unit of value expressed in base units
const Coin Amount = 1_000_000_000

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a quantity of value in base units (10^-9 of a coin)
type Amount uint64

// ParseAmount parses a decimal coin string such as "0.1" into base units
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, s)
	}
	shifted := d.Shift(AmountDecimals)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf(
			"%w: more than %d decimal places in %s",
			ErrInvalidAmount,
			AmountDecimals,
			s,
		)
	}
	tmpInt := shifted.BigInt()
	if !tmpInt.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows", ErrInvalidAmount, s)
	}
	return Amount(tmpInt.Uint64()), nil
}

// MustParseAmount is like ParseAmount but panics on error
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String formats the amount as a decimal coin value with trailing zeros trimmed
func (a Amount) String() string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(uint64(a)),
		-AmountDecimals,
	).String()
}

// Add returns a+b and false if the sum overflows
func (a Amount) Add(b Amount) (Amount, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	return Amount(sum), carry == 0
}

// Sub returns a-b and false if b is larger than a
func (a Amount) Sub(b Amount) (Amount, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// Mul returns a*n and false on overflow
func (a Amount) Mul(n uint64) (Amount, bool) {
	hi, lo := bits.Mul64(uint64(a), n)
	return Amount(lo), hi == 0
}

// MarshalText encodes the amount as a decimal coin string
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	tmp, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}
