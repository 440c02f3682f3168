// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build ltqdebug

package ltq

// debugInvariants enables internal invariant checks that panic on
// violation. Build with -tags ltqdebug.
const debugInvariants = true
