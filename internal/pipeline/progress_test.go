package pipeline

import "testing"

func TestStageTracker_OrderAndUpdateInPlace(t *testing.T) {
	tracker := newStageTracker(nil)

	tracker.Update(StepTextExtraction, "starting")
	tracker.Update(StepImageProcessing, "decoding")
	tracker.Update(StepTextExtraction, "reading lines")
	tracker.Complete(StepTextExtraction, "done")

	events := tracker.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(events))
	}

	// Order is by first emission, not by latest update
	if events[0].Step != StepTextExtraction || events[1].Step != StepImageProcessing {
		t.Errorf("Unexpected step order: %v", events)
	}
	if events[0].Detail != "done" || !events[0].Completed {
		t.Errorf("Expected in-place terminal update, got %+v", events[0])
	}
	if events[1].Completed {
		t.Errorf("Step should not be completed: %+v", events[1])
	}
}

func TestStageTracker_SinkReceivesEveryEmission(t *testing.T) {
	var got []string
	sink := ProgressSink(func(step, detail string) {
		got = append(got, step+": "+detail)
	})

	tracker := newStageTracker(sink)
	tracker.Update(StepCentering, "measuring")
	tracker.Complete(StepCentering, "score 9.5")

	expected := []string{
		StepCentering + ": measuring",
		StepCentering + ": score 9.5",
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d emissions, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Emission %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestStageTracker_NilSink(t *testing.T) {
	tracker := newStageTracker(nil)
	tracker.Update(StepEdges, "inspecting")
	tracker.Complete(StepEdges, "score 4.2")

	events := tracker.Events()
	if len(events) != 1 || !events[0].Completed {
		t.Errorf("Expected one completed step, got %v", events)
	}
}
