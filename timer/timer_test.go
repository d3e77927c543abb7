package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obft/core/types"
)

func TestDueInDeadlineOrder(t *testing.T) {
	s := New()
	go s.Run()
	defer s.Stop()

	now := time.Now()
	s.Schedule(Info{Deadline: now.Add(30 * time.Millisecond), Height: 1, Round: 0, Step: types.StepPrevoteWait})
	s.Schedule(Info{Deadline: now.Add(10 * time.Millisecond), Height: 1, Round: 0, Step: types.StepPropose})
	s.Schedule(Info{Deadline: now.Add(20 * time.Millisecond), Height: 1, Round: 0, Step: types.StepPrecommitWait})

	var order []types.Step
	for i := 0; i < 3; i++ {
		select {
		case info := <-s.Due():
			order = append(order, info.Step)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for due timeout")
		}
	}

	require.Equal(t, []types.Step{types.StepPropose, types.StepPrecommitWait, types.StepPrevoteWait}, order)
}

func TestDueBreaksTiesByInsertionOrder(t *testing.T) {
	s := New()
	go s.Run()
	defer s.Stop()

	deadline := time.Now().Add(20 * time.Millisecond)
	s.Schedule(Info{Deadline: deadline, Height: 1, Round: 0, Step: types.StepPropose})
	s.Schedule(Info{Deadline: deadline, Height: 1, Round: 1, Step: types.StepPropose})

	first := <-s.Due()
	second := <-s.Due()
	require.Equal(t, types.Round(0), first.Round)
	require.Equal(t, types.Round(1), second.Round)
}
