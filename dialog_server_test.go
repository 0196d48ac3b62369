package sipkit

import (
	"context"
	"testing"
	"time"

	"github.com/arnesip/sipkit/sip"
	"github.com/arnesip/sipkit/siptest"
	"github.com/arnesip/sipkit/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDialogServerClient(t testing.TB, f func(req *sip.Request) *sip.Response) *Client {
	ua, err := NewUA()
	require.NoError(t, err)
	cli, err := NewClient(ua)
	require.NoError(t, err)
	cli.TxRequester = &siptest.ClientTxRequester{OnRequest: f}
	return cli
}

func TestDialogServerRequestsWithinDialogRouteHeaders(t *testing.T) {
	// https://datatracker.ietf.org/doc/html/rfc3261#section-12.1.1
	var sentReq *sip.Request
	cli := testDialogServerClient(t, func(req *sip.Request) *sip.Response {
		sentReq = req
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	uasContact := sip.ContactHeader{Address: sip.Uri{User: "test", Host: "127.0.0.200", Port: 5099}}
	dialogSrv := NewDialogServer(cli, uasContact)

	invite, _, _ := createTestInvite(t, "sip:uas@uas.com", "udp", "uas.com:5090")
	invite.AppendHeader(&sip.ContactHeader{Address: sip.Uri{Host: "uas", Port: 1234}})
	invite.AppendHeader(&sip.RecordRouteHeader{Address: sip.Uri{Host: "P1", Port: 5060}})
	invite.AppendHeader(&sip.RecordRouteHeader{Address: sip.Uri{Host: "P2", Port: 5060}})
	invite.AppendHeader(&sip.RecordRouteHeader{Address: sip.Uri{Host: "P3", Port: 5060}})

	tx := siptest.NewServerTxRecorder(invite)
	dialog, err := dialogSrv.ReadInvite(invite, tx)
	require.NoError(t, err)

	cont, _ := invite.Contact()
	bye := sip.NewRequest(sip.BYE, cont.Address)
	_, err = dialog.TransactionRequest(context.Background(), bye)
	require.NoError(t, err)

	inviteCallID, _ := invite.CallID()
	sentCallID, _ := sentReq.CallID()
	assert.Equal(t, inviteCallID, sentCallID)

	routes := sentReq.GetHeaders("Route")
	require.Len(t, routes, 3)
	// Route set is the Record-Route set in reverse order
	assert.Equal(t, "<sip:P3:5060>", routes[0].Value())
	assert.Equal(t, "<sip:P2:5060>", routes[1].Value())
	assert.Equal(t, "<sip:P1:5060>", routes[2].Value())
}

func TestDialogServerReadBye(t *testing.T) {
	cli := testDialogServerClient(t, func(req *sip.Request) *sip.Response {
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	uasContact := sip.ContactHeader{Address: sip.Uri{User: "test", Host: "127.0.0.200", Port: 5099}}
	dialogSrv := NewDialogServer(cli, uasContact)

	invite, _, _ := createTestInvite(t, "sip:uas@127.0.0.1", "udp", "127.0.0.1:5090")
	invite.AppendHeader(&sip.ContactHeader{Address: sip.Uri{Host: "uas", Port: 1234}})

	t.Run("InvalidCseq", func(t *testing.T) {
		tx := siptest.NewServerTxRecorder(invite)
		dialog, err := dialogSrv.ReadInvite(invite, tx)
		require.NoError(t, err)
		defer dialog.Close()

		res := sip.NewResponseFromRequest(invite, 200, "OK", nil)
		byeWrongCseq := newByeRequestUAC(invite, res, nil)
		cseq, _ := byeWrongCseq.CSeq()
		cseq.SeqNo--

		byeTx := siptest.NewServerTxRecorder(byeWrongCseq)
		err = dialogSrv.ReadBye(byeWrongCseq, byeTx)
		require.ErrorIs(t, err, ErrDialogInvalidCseq)
	})

	t.Run("Success", func(t *testing.T) {
		tx := siptest.NewServerTxRecorder(invite)
		dialog, err := dialogSrv.ReadInvite(invite, tx)
		require.NoError(t, err)
		defer dialog.Close()

		reinvite := sip.NewRequest(sip.INVITE, invite.Recipient)
		_, err = dialog.TransactionRequest(context.Background(), reinvite)
		require.NoError(t, err)

		res := sip.NewResponseFromRequest(invite, 200, "OK", nil)
		bye := newByeRequestUAC(invite, res, nil)
		byeTx := siptest.NewServerTxRecorder(bye)
		err = dialogSrv.ReadBye(bye, byeTx)
		require.NoError(t, err)
	})
}

func TestDialogServer2xxRetransmission(t *testing.T) {
	cli := testDialogServerClient(t, func(req *sip.Request) *sip.Response {
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	uasContact := sip.ContactHeader{Address: sip.Uri{User: "test", Host: "127.0.0.200", Port: 5099}}
	dialogSrv := NewDialogServer(cli, uasContact)

	invite, _, _ := createTestInvite(t, "sip:uas@127.0.0.1", "udp", "127.0.0.1:5090")
	invite.AppendHeader(&sip.ContactHeader{Address: sip.Uri{Host: "uas", Port: 1234}})

	tx := siptest.NewServerTxRecorder(invite)

	d, err := dialogSrv.ReadInvite(invite, tx)
	require.NoError(t, err)

	res200 := sip.NewResponseFromRequest(d.InviteRequest, 200, "OK", nil)
	ackReceive := sip.NewAckRequest(d.InviteRequest, res200, nil)
	go func() {
		// Delay ACK receiving to give the invite server transaction a chance
		// to retransmit the 2xx response
		time.Sleep(2 * transaction.DefaultTimers().T1)
		dialogSrv.ReadAck(ackReceive, tx)
	}()

	err = d.WriteResponse(res200)
	require.NoError(t, err)

	resps := tx.Result()
	require.GreaterOrEqual(t, len(resps), 1)
}
