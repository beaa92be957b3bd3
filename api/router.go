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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

const (
	AccountHeader   = "X-Account"
	RequestIdHeader = "X-Request-Id"

	callerKey = "caller"
)

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestId(), s.requestLogger())
	if s.config.MaxRequestsPerIP > 0 {
		router.Use(s.limitPerIP())
	}
	router.GET("/health", s.handleHealth)

	v0 := router.Group("/api/v0")

	proposals := v0.Group("/proposals")
	proposals.GET("", s.handleListProposals)
	proposals.POST("", s.requireCaller(), s.handleCreateProposal)
	proposals.GET("/:index", s.handleGetProposal)
	proposals.GET("/:index/votes", s.handleGetVotes)
	proposals.POST("/:index/votes", s.requireCaller(), s.handleVote)
	proposals.POST("/:index/execute", s.requireCaller(), s.handleExecute)

	treasury := v0.Group("/treasury")
	treasury.GET("", s.handleTreasuryBalance)
	treasury.GET("/history", s.handleTreasuryHistory)
	treasury.POST("/deposit", s.requireCaller(), s.handleDeposit)
	treasury.POST("/withdraw", s.requireCaller(), s.handleWithdraw)

	assets := v0.Group("/assets")
	assets.GET("", s.handleAssetsInfo)
	assets.POST("/presale", s.requireCaller(), s.handleStartPresale)
	assets.POST("/presale/mint", s.requireCaller(), s.handlePresaleMint)
	assets.POST("/mint", s.requireCaller(), s.handleMint)
	assets.GET("/units/:unit", s.handleUnitOwner)
	assets.POST("/units/:unit/transfer", s.requireCaller(), s.handleTransfer)
	assets.GET("/accounts/:account", s.handleAssetBalance)

	wl := v0.Group("/whitelist")
	wl.POST("", s.requireCaller(), s.handleWhitelistAdd)
	wl.GET("/:account", s.handleWhitelistCheck)

	v0.GET("/market/items/:item", s.handleMarketItem)

	tok := v0.Group("/token")
	tok.POST("/mint", s.requireCaller(), s.handleTokenMint)
	tok.POST("/claim", s.requireCaller(), s.handleTokenClaim)
	tok.GET("/accounts/:account", s.handleTokenBalance)

	return router
}

func (s *Server) requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(RequestIdHeader, ksuid.New().String())
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(
			"request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.Writer.Header().Get(RequestIdHeader),
		)
	}
}

// requireCaller attributes the request to the account named in the account
// header
func (s *Server) requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		var hdr callerHeader
		if err := c.ShouldBindHeader(&hdr); err != nil {
			s.writeError(c, errBadRequest("missing or invalid "+AccountHeader+" header"))
			c.Abort()
			return
		}
		c.Set(callerKey, mustParseAccount(hdr.Account))
		c.Next()
	}
}
