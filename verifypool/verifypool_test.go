package verifypool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obft/core/types"
)

func TestSubmitReportsVerdictAsynchronously(t *testing.T) {
	p := New(func(p types.Proposal) bool {
		return p.Content.Equal(types.Target("X"))
	}, 2)
	defer p.Close()

	results := make(chan types.VerifyResp, 2)
	p.Submit(types.Proposal{Content: types.Target("X")}, func(r types.VerifyResp) { results <- r })
	p.Submit(types.Proposal{Content: types.Target("Y")}, func(r types.VerifyResp) { results <- r })

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			seen[r.Proposal.Key()] = r.IsPass
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for verdict")
		}
	}
	require.True(t, seen[types.Target("X").Key()])
	require.False(t, seen[types.Target("Y").Key()])
}
