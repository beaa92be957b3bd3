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

package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/blinklabs-io/daoledger/types"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account", validateAccount)
		_ = v.RegisterValidation("amount", validateAmount)
	}
}

func validateAccount(fl validator.FieldLevel) bool {
	_, err := types.ParseAccount(fl.Field().String())
	return err == nil
}

func validateAmount(fl validator.FieldLevel) bool {
	_, err := types.ParseAmount(fl.Field().String())
	return err == nil
}

// The values below have already passed the validators above

func mustParseAccount(s string) types.Account {
	return types.MustParseAccount(s)
}

func mustParseAmount(s string) types.Amount {
	return types.MustParseAmount(s)
}
