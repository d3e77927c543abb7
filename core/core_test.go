package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/obft/core/engine"
	"github.com/obft/core/types"
)

type nopSink struct{}

func (nopSink) Send(types.CoreOutput) error { return nil }

func TestSendRejectsWrongVariant(t *testing.T) {
	c := New(nopSink{}, types.Address{1})
	defer c.Stop()

	require.ErrorIs(t, c.SendProposal(types.Start{}), types.MsgTypeErr)
	require.ErrorIs(t, c.SendVote(types.Pause{}), types.MsgTypeErr)
	require.ErrorIs(t, c.SendFeed(types.Vote{}), types.MsgTypeErr)
	require.ErrorIs(t, c.SendStatus(types.Feed{}), types.MsgTypeErr)
	require.ErrorIs(t, c.SendPause(types.Start{}), types.MsgTypeErr)
	require.ErrorIs(t, c.SendStart(types.Pause{}), types.MsgTypeErr)
}

func TestSendAfterStopReturnsSendMsgErr(t *testing.T) {
	c := New(nopSink{}, types.Address{1})
	c.Stop()

	require.ErrorIs(t, c.Send(types.Start{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendProposal(types.Proposal{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendVote(types.Vote{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendFeed(types.Feed{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendStatus(types.Status{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendCommit(types.Commit{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendVerify(types.VerifyResp{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendPause(types.Pause{}), types.SendMsgErr)
	require.ErrorIs(t, c.SendStart(types.Start{}), types.SendMsgErr)
}

func TestHeightTracksStatusMonotonically(t *testing.T) {
	c := New(nopSink{}, types.Address{1}, engine.WithBaseInterval(time.Second))
	defer c.Stop()

	require.Equal(t, types.Height(0), c.GetHeight())

	heights := []struct{ in, want types.Height }{
		{1, 2}, {2, 3}, {1, 3}, {4, 5}, {6, 7}, {5, 7},
	}
	for _, h := range heights {
		err := c.SendStatus(types.Status{Height: h.in})
		require.NoError(t, err)
		require.Equal(t, h.want, c.GetHeight())
	}
}
