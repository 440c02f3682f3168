// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package ltq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests: node links and the sweep counter
// are atomix operations, which the race detector cannot observe as
// synchronized.
const RaceEnabled = true
