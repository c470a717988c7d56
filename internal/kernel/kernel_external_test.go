//go:build unix

// Package kernel_test provides black-box tests for the kernel package.
// It tests the kernel facade and default instance.
package kernel_test

import (
	"testing"

	"github.com/kodflow/daemon/internal/kernel"
)

// TestNew tests the New constructor.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestNew(t *testing.T) {
	// Define test cases for New.
	tests := []struct {
		name string
	}{
		{name: "returns non-nil kernel"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.New()
			// Check if the kernel is not nil.
			if k == nil {
				t.Error("New should return a non-nil instance")
			}
		})
	}
}

// TestKernel_Signals tests that Signals interface is initialized.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestKernel_Signals(t *testing.T) {
	// Define test cases for Signals.
	tests := []struct {
		name string
	}{
		{name: "signals interface initialized"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.New()
			// Check Signals interface.
			if k.Signals == nil {
				t.Error("Signals interface should not be nil")
			}
		})
	}
}

// TestKernel_Credentials tests that Credentials interface is initialized.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestKernel_Credentials(t *testing.T) {
	// Define test cases for Credentials.
	tests := []struct {
		name string
	}{
		{name: "credentials interface initialized"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.New()
			// Check Credentials interface.
			if k.Credentials == nil {
				t.Error("Credentials interface should not be nil")
			}
		})
	}
}

// TestKernel_Process tests that Process interface is initialized.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestKernel_Process(t *testing.T) {
	// Define test cases for Process.
	tests := []struct {
		name string
	}{
		{name: "process interface initialized"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.New()
			// Check Process interface.
			if k.Process == nil {
				t.Error("Process interface should not be nil")
			}
		})
	}
}

// TestKernel_Reaper tests that Reaper interface is initialized.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestKernel_Reaper(t *testing.T) {
	// Define test cases for Reaper.
	tests := []struct {
		name string
	}{
		{name: "reaper interface initialized"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.New()
			// Check Reaper interface.
			if k.Reaper == nil {
				t.Error("Reaper interface should not be nil")
			}
		})
	}
}

// TestDefault tests the Default kernel instance.
//
// Params:
//   - t: the testing context
//
// Returns:
//   - (none, test function)
func TestDefault(t *testing.T) {
	// Define test cases for Default.
	tests := []struct {
		name string
	}{
		{name: "default kernel is not nil"},
	}

	// Iterate over test cases.
	for _, tt := range tests {
		// Run each test case as a subtest.
		t.Run(tt.name, func(t *testing.T) {
			// Check if the default kernel is not nil.
			if kernel.Default == nil {
				t.Error("Default kernel should not be nil")
			}
		})
	}
}
