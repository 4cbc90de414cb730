// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"testing"
)

func TestAcquireRefusesUnconfiguredSwapchain(t *testing.T) {
	// No command buffers have been recorded, acquisition must fail as a
	// lost surface rather than hand out an unsubmittable target.
	s := &VulkanSwapchain{}
	target, err := s.Acquire()
	if target != nil {
		t.Error("unconfigured swapchain must not produce a target")
	}
	if !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("expected surface lost, got %v", err)
	}
}
