package sipkit

import (
	"testing"
	"time"

	"github.com/arnesip/sipkit/sip"
	"github.com/arnesip/sipkit/siptest"
	"github.com/stretchr/testify/require"
)

func TestDialogServer(t *testing.T) {
	ua, err := NewUA()
	require.Nil(t, err)

	srv, err := NewServer(ua)
	require.Nil(t, err)
	defer srv.Close()

	cli := testDialogServerClient(t, func(req *sip.Request) *sip.Response {
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	contactHDR := sip.ContactHeader{
		Address: sip.Uri{User: "test", Host: "test.com"},
	}

	dialogSrv := NewDialogServer(cli, contactHDR)

	inviteHandler := func(req *sip.Request, tx sip.ServerTransaction) *DialogServerSession {
		dtx, err := dialogSrv.ReadInvite(req, tx)
		require.Nil(t, err)

		err = dtx.Respond(sip.StatusTrying, "Trying", nil)
		require.Nil(t, err)

		err = dtx.Respond(sip.StatusRinging, "Ringing", nil)
		require.Nil(t, err)

		err = dtx.Respond(sip.StatusOK, "OK", nil)
		require.Nil(t, err)

		return dtx
	}

	ackHandler := func(req *sip.Request, tx sip.ServerTransaction) {
		err := dialogSrv.ReadAck(req, tx)
		require.Nil(t, err)
	}

	byeHandler := func(req *sip.Request, tx sip.ServerTransaction) {
		err := dialogSrv.ReadBye(req, tx)
		require.Nil(t, err)
	}

	// Sending INVITE
	invite, _, _ := createTestInvite(t, "sip:test@test.com", "udp", "127.0.0.1:5060")
	invite.AppendHeader(&sip.ContactHeader{Address: sip.Uri{User: "test", Host: "127.0.0.1", Port: 5060}})
	tx := siptest.NewServerTxRecorder(invite)
	inviteHandler(invite, tx)

	resps := tx.Result()
	require.Len(t, resps, 3)
	// Check all headers are present
	for _, r := range resps {
		chdr, _ := r.Contact()
		require.Equal(t, contactHDR, *chdr)
	}

	okResp := resps[2]
	require.Equal(t, sip.StatusOK, okResp.StatusCode)

	// Sending ACK
	ack := sip.NewAckRequest(invite, okResp, nil)
	tx = siptest.NewServerTxRecorder(ack)
	ackHandler(ack, tx)
	// No responses should be sent
	resps = tx.Result()
	require.Len(t, resps, 0)

	// Sending BYE
	bye := newByeRequestUAC(invite, okResp, nil)
	tx = siptest.NewServerTxRecorder(bye)
	time.AfterFunc(1*time.Second, func() {
		// Force termination
		// Not to wait Timer_J
		tx.Terminate()
	})
	byeHandler(bye, tx)

	resps = tx.Result()
	require.Len(t, resps, 1)
	require.Equal(t, sip.StatusOK, resps[0].StatusCode)
}
