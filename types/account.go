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

	"github.com/ethereum/go-ethereum/common"
)

// AccountLength is the size in bytes of an account identity
const AccountLength = common.AddressLength

var ErrInvalidAccount = errors.New("invalid account")

// Account is an authenticated caller identity. Accounts use the familiar
// 20-byte hex address representation.
type Account common.Address

// ParseAccount decodes a hex account string with or without the 0x prefix
func ParseAccount(s string) (Account, error) {
	if !common.IsHexAddress(s) {
		return Account{}, fmt.Errorf("%w: %q", ErrInvalidAccount, s)
	}
	return Account(common.HexToAddress(s)), nil
}

// MustParseAccount is like ParseAccount but panics on error. It is intended for
// constants in tests and static configuration.
func MustParseAccount(s string) Account {
	a, err := ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AccountFromBytes builds an account from its raw bytes
func AccountFromBytes(b []byte) (Account, error) {
	if len(b) != AccountLength {
		return Account{}, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAccount,
			AccountLength,
			len(b),
		)
	}
	return Account(common.BytesToAddress(b)), nil
}

func (a Account) Bytes() []byte {
	return common.Address(a).Bytes()
}

// String returns the EIP-55 checksummed hex form
func (a Account) String() string {
	return common.Address(a).Hex()
}

func (a Account) IsZero() bool {
	return a == Account{}
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Account) UnmarshalText(text []byte) error {
	tmp, err := ParseAccount(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// UnitId identifies a single asset unit in the registry
type UnitId uint64

// ItemId identifies an item listed on the marketplace
type ItemId uint64
