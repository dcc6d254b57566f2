package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	tracker.Update(5)
	assert.Empty(t, buf.String(), "below the report interval, nothing is written")

	tracker.Update(10)
	out := buf.String()
	assert.Contains(t, out, "10/100")
	assert.Contains(t, out, "10.0%")
	assert.Contains(t, out, "ETA")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 50, 10)
	tracker.Start()
	tracker.Update(25)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "50/50")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"), "finish terminates the progress line")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 20, 1)
	tracker.Start()
	tracker.Update(35)

	assert.Contains(t, buf.String(), "20/20")
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 20, 1)
	tracker.Update(10)
	tracker.Finish()

	assert.Empty(t, buf.String())
}
