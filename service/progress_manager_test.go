package service

import "testing"

func TestNewProgressManagerDisabled(t *testing.T) {
	pm := NewProgressManager(false)
	if _, ok := pm.(*NoOpProgressManager); !ok {
		t.Errorf("disabled progress manager should be a no-op, got %T", pm)
	}
	if pm.IsInteractive() {
		t.Error("no-op progress manager reports interactive")
	}
}

func TestNoOpTaskProgressIsSafe(t *testing.T) {
	pm := NewProgressManager(false)
	task := pm.StartTask("testing", 10)
	task.Increment(5)
	task.Describe("still testing")
	task.Complete()
	pm.Close()
}
