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
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPKey(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		expected string
	}{
		{name: "empty", ip: "", expected: ""},
		{name: "garbage", ip: "not-an-ip", expected: ""},
		{name: "IPv4", ip: "192.168.1.10", expected: "192.168.1.10"},
		{name: "IPv4 loopback", ip: "127.0.0.1", expected: "127.0.0.1"},
		{
			name:     "IPv6 grouped by /64",
			ip:       "2001:db8:85a3::8a2e:370:7334",
			expected: "2001:db8:85a3::/64",
		},
		{
			name:     "IPv6 different host same /64 prefix",
			ip:       "2001:db8:85a3::1",
			expected: "2001:db8:85a3::/64",
		},
		{name: "IPv6 loopback", ip: "::1", expected: "::/64"},
		{
			name:     "IPv4-mapped IPv6 treated as IPv4",
			ip:       "::ffff:192.168.1.1",
			expected: "192.168.1.1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ipKey(tc.ip))
		})
	}
}

func newLimitTestServer(limit int) *Server {
	return &Server{
		config:     ServerConfig{MaxRequestsPerIP: limit},
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		ipRequests: make(map[string]int),
	}
}

func TestIPSlots(t *testing.T) {
	s := newLimitTestServer(2)
	assert.True(t, s.acquireIPSlot("10.0.0.1"))
	assert.True(t, s.acquireIPSlot("10.0.0.1"))
	assert.False(t, s.acquireIPSlot("10.0.0.1"))
	// Other sources are unaffected
	assert.True(t, s.acquireIPSlot("10.0.0.2"))
	// Exempt key
	assert.True(t, s.acquireIPSlot(""))
	s.releaseIPSlot("10.0.0.1")
	assert.True(t, s.acquireIPSlot("10.0.0.1"))
	s.releaseIPSlot("10.0.0.1")
	s.releaseIPSlot("10.0.0.1")
	s.releaseIPSlot("10.0.0.2")
	assert.Empty(t, s.ipRequests)
}

func TestLimitPerIPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newLimitTestServer(1)
	router := gin.New()
	router.Use(s.limitPerIP())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	// The slot is released once the request completes
	assert.Empty(t, s.ipRequests)

	// Hold the only slot for the test client address
	key := ipKey("192.0.2.1")
	require.True(t, s.acquireIPSlot(key))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	s.releaseIPSlot(key)
}
