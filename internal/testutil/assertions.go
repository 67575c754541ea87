package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepRan checks the log output within a HarnessResult to confirm that
// a specific step has completed. It abstracts the underlying node ID format,
// making tests more resilient to internal refactoring.
func AssertStepRan(t *testing.T, result *HarnessResult, solidType, stepName string) {
	t.Helper()

	expectedLogSubstring := fmt.Sprintf("step=step.%s.%s", solidType, stepName)

	require.True(t,
		strings.Contains(result.LogOutput, expectedLogSubstring),
		"expected log output for step '%s.%s' was not found in logs", solidType, stepName,
	)
}

// AssertStepSkipped confirms a step was skipped due to an upstream failure.
func AssertStepSkipped(t *testing.T, result *HarnessResult, solidType, stepName string) {
	t.Helper()

	nodeID := fmt.Sprintf("step.%s.%s", solidType, stepName)
	require.True(t,
		strings.Contains(result.LogOutput, "Skipping dependent node due to upstream failure.") &&
			strings.Contains(result.LogOutput, nodeID),
		"expected step '%s' to be skipped", nodeID,
	)
}
