// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package invariants

import "math/rand"

// Sometimes returns true percent% of the time if the binary was built with
// the "invariants" or "race" build tags. Otherwise it always returns false.
func Sometimes(percent int) bool {
	return Enabled && rand.Intn(100) < percent
}
