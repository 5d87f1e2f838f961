package framework

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func AssertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	assert.Contains(t, output, expected, "Expected output containing '%s', got: %s", expected, output)
}

// AssertHelpfulError checks that a failure message carries guidance
// beyond the raw git diagnostic.
func AssertHelpfulError(t *testing.T, output string) {
	t.Helper()

	helpfulElements := []string{
		"Solutions:",
		"Solution:",
		"Cause:",
		"Tip:",
		"•",
	}

	for _, element := range helpfulElements {
		if strings.Contains(output, element) {
			return
		}
	}
	t.Errorf("Error message does not appear to be helpful. Got: %s", output)
}

func AssertMultipleStringsInOutput(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		assert.Contains(t, output, exp, "Expected output to contain '%s', got: %s", exp, output)
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	assert.NoError(t, err)
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
}

func AssertTrue(t *testing.T, condition bool, message string) {
	t.Helper()
	assert.True(t, condition, message)
}
