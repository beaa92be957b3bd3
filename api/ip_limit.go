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
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestsPerIP bounds the in-flight requests from one source
const DefaultMaxRequestsPerIP = 16

// ipKey extracts a rate-limit key from a client IP string. For IPv4
// addresses the key is the bare IP string. For IPv6 addresses the key
// is the /64 prefix so that a client rotating within a single /64
// subnet is still limited as one source. Unparseable addresses return
// an empty string and are exempt.
func ipKey(clientIP string) string {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return ""
	}
	// IPv4 or IPv4-mapped IPv6: use the full address as the key
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	// IPv6: mask to /64 prefix to handle subnet rotation
	mask := net.CIDRMask(64, 128)
	return ip.Mask(mask).String() + "/64"
}

// acquireIPSlot attempts to reserve a request slot for the given IP
// key. It returns false if the per-IP limit has been reached.
func (s *Server) acquireIPSlot(key string) bool {
	if key == "" {
		return true
	}
	s.ipMu.Lock()
	defer s.ipMu.Unlock()
	if s.ipRequests[key] >= s.config.MaxRequestsPerIP {
		return false
	}
	s.ipRequests[key]++
	return true
}

func (s *Server) releaseIPSlot(key string) {
	if key == "" {
		return
	}
	s.ipMu.Lock()
	defer s.ipMu.Unlock()
	s.ipRequests[key]--
	if s.ipRequests[key] <= 0 {
		delete(s.ipRequests, key)
	}
}

func (s *Server) limitPerIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ipKey(c.ClientIP())
		if !s.acquireIPSlot(key) {
			c.AbortWithStatusJSON(
				http.StatusTooManyRequests,
				ErrorResponse{
					StatusCode: http.StatusTooManyRequests,
					Error:      http.StatusText(http.StatusTooManyRequests),
					Message:    "too many concurrent requests",
				},
			)
			return
		}
		defer s.releaseIPSlot(key)
		c.Next()
	}
}
