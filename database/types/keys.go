// Copyright 2025 Blink Labs Software
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
	"encoding/binary"
	"slices"
)

const (
	VoteBlobKeyPrefix      = "v"
	CommitTimestampBlobKey = "metadata_commit_timestamp"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// VoteBlobProposalPrefix returns the key prefix shared by every vote record
// of a proposal
func VoteBlobProposalPrefix(proposalIndex uint64) []byte {
	return slices.Concat(
		[]byte(VoteBlobKeyPrefix),
		BlobKeyUint64ToBytes(proposalIndex),
	)
}

// VoteBlobKey returns the key for the vote record of an asset unit on a proposal.
// Big-endian encoding keeps a proposal's records sorted by unit id
func VoteBlobKey(proposalIndex uint64, unitId uint64) []byte {
	return slices.Concat(
		VoteBlobProposalPrefix(proposalIndex),
		BlobKeyUint64ToBytes(unitId),
	)
}

// VoteBlobKeyUnit extracts the unit id from a vote record key
func VoteBlobKeyUnit(key []byte) (uint64, bool) {
	if len(key) != len(VoteBlobKeyPrefix)+16 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(key)-8:]), true
}
