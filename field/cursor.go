// Copyright 2024 Flowtrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package field

import "github.com/flowtrace/grammar/model"

// Cursor is the position of one packet during the heuristic walk. It only
// ever advances monotonically and never past the end of its payload.
type Cursor struct {
	Payload model.Payload
	Pos     int
}

// Done reports whether the cursor has been exhausted.
func (c *Cursor) Done() bool {
	return c.Pos >= len(c.Payload)
}

// byteAt returns the byte the cursor currently points to. The caller must
// check Done first.
func (c *Cursor) byteAt() byte {
	return c.Payload[c.Pos]
}

// remaining returns the number of unconsumed bytes.
func (c *Cursor) remaining() int {
	return len(c.Payload) - c.Pos
}
