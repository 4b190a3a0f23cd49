// Copyright 2026 The AgentVox Authors
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

package session

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"time"
)

// TOTPVerifier implements the RFC 6238 time-based code check over a shared
// base32 secret, with a one-step window either side for clock drift.
type TOTPVerifier struct {
	Step   time.Duration
	Digits int
	now    func() time.Time
}

// NewTOTPVerifier returns a verifier with the standard 30s step and 6 digits.
func NewTOTPVerifier() *TOTPVerifier {
	return &TOTPVerifier{Step: 30 * time.Second, Digits: 6, now: time.Now}
}

// Verify checks the code against the current step and its neighbors.
func (v *TOTPVerifier) Verify(secret, code string) bool {
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return false
	}

	counter := uint64(v.now().Unix() / int64(v.Step.Seconds()))
	for _, c := range []uint64{counter - 1, counter, counter + 1} {
		if subtle.ConstantTimeCompare([]byte(v.generate(key, c)), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// generate implements the RFC 4226 dynamic truncation.
func (v *TOTPVerifier) generate(key []byte, counter uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < v.Digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", v.Digits, value%mod)
}
