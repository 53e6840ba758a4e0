package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	tracker.Update(3)
	assert.Empty(t, buf.String(), "below interval, nothing reported yet")

	tracker.Update(5)
	assert.Contains(t, buf.String(), "5/10")
	assert.Contains(t, buf.String(), "50.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 100)
	tracker.Start()

	tracker.Update(2)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 1)
	tracker.Start()

	tracker.Update(7)
	assert.Contains(t, buf.String(), "3/3")
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 1)

	tracker.Update(2)
	tracker.Finish()
	assert.Empty(t, buf.String())

	require.Equal(t, int64(0), tracker.Elapsed().Nanoseconds())
}
