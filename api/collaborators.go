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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/daoledger/types"
)

func (s *Server) handleAssetsInfo(c *gin.Context) {
	reg := s.config.Registry
	c.JSON(http.StatusOK, AssetsInfoResponse{
		UnitPrice: reg.UnitPrice(),
		MaxUnits:  reg.MaxUnits(),
		Minted:    reg.TotalMinted(),
		Paused:    reg.Paused(),
	})
}

func (s *Server) handleStartPresale(c *gin.Context) {
	ends, err := s.config.Registry.StartPresale(caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PresaleResponse{Ends: ends.UTC()})
}

func (s *Server) handlePresaleMint(c *gin.Context) {
	s.mint(c, true)
}

func (s *Server) handleMint(c *gin.Context) {
	s.mint(c, false)
}

func (s *Server) mint(c *gin.Context, presale bool) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	mintFunc := s.config.Registry.Mint
	if presale {
		mintFunc = s.config.Registry.PresaleMint
	}
	unit, err := mintFunc(caller(c), mustParseAmount(req.Value))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MintResponse{Unit: uint64(unit)})
}

func (s *Server) handleUnitOwner(c *gin.Context) {
	var uri unitUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	owner, err := s.config.Registry.OwnerOf(
		c.Request.Context(),
		types.UnitId(uri.Unit),
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnitResponse{Unit: uri.Unit, Owner: owner})
}

func (s *Server) handleTransfer(c *gin.Context) {
	var uri unitUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	to := mustParseAccount(req.To)
	err := s.config.Registry.Transfer(caller(c), to, types.UnitId(uri.Unit))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnitResponse{Unit: uri.Unit, Owner: to})
}

func (s *Server) handleAssetBalance(c *gin.Context) {
	var uri accountUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	account := mustParseAccount(uri.Account)
	units, err := s.config.Registry.UnitsOwnedBy(c.Request.Context(), account)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ret := AssetBalanceResponse{
		Account: account,
		Balance: uint64(len(units)),
		Units:   make([]uint64, 0, len(units)),
	}
	for _, unit := range units {
		ret.Units = append(ret.Units, uint64(unit))
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handleWhitelistAdd(c *gin.Context) {
	account := caller(c)
	if err := s.config.Whitelist.Add(account); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, WhitelistResponse{
		Account:     account,
		Whitelisted: true,
		Count:       s.config.Whitelist.Count(),
	})
}

func (s *Server) handleWhitelistCheck(c *gin.Context) {
	var uri accountUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	account := mustParseAccount(uri.Account)
	c.JSON(http.StatusOK, WhitelistResponse{
		Account:     account,
		Whitelisted: s.config.Whitelist.Contains(account),
		Count:       s.config.Whitelist.Count(),
	})
}

func (s *Server) handleMarketItem(c *gin.Context) {
	var uri itemUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	ctx := c.Request.Context()
	item := types.ItemId(uri.Item)
	available, err := s.config.Market.IsAvailable(ctx, item)
	if err != nil {
		s.writeError(c, err)
		return
	}
	price, err := s.config.Market.PriceOf(ctx, item)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ret := MarketItemResponse{
		Item:      uri.Item,
		Price:     price,
		Available: available,
	}
	if owner, ok := s.config.Market.OwnerOf(item); ok {
		ret.Owner = &owner
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handleTokenMint(c *gin.Context) {
	var req TokenMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	account := caller(c)
	err := s.config.Token.Mint(account, req.Amount, mustParseAmount(req.Value))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.tokenBalance(c, http.StatusCreated, account)
}

func (s *Server) handleTokenClaim(c *gin.Context) {
	claimed, err := s.config.Token.Claim(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClaimResponse{Claimed: claimed})
}

func (s *Server) handleTokenBalance(c *gin.Context) {
	var uri accountUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	s.tokenBalance(c, http.StatusOK, mustParseAccount(uri.Account))
}

func (s *Server) tokenBalance(c *gin.Context, status int, account types.Account) {
	c.JSON(status, TokenBalanceResponse{
		Account:     account,
		Balance:     s.config.Token.BalanceOf(account),
		TotalSupply: s.config.Token.TotalSupply(),
	})
}
