package sipkit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arnesip/sipkit/sip"
	"github.com/arnesip/sipkit/siptest"
	"github.com/arnesip/sipkit/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t testing.TB, f func(req *sip.Request) *sip.Response) *Client {
	ua, _ := NewUA()
	client, err := NewClient(ua)
	require.NoError(t, err)
	client.TxRequester = &siptest.ClientTxRequester{
		OnRequest: f,
	}
	return client
}

func testClientResponder(t testing.TB, f func(req *sip.Request, w *siptest.ClientTxResponder)) *Client {
	ua, _ := NewUA()
	client, err := NewClient(ua)
	require.NoError(t, err)
	client.TxRequester = &siptest.ClientTxRequesterResponder{
		OnRequest: f,
	}
	return client
}

func TestDialogClientRouteSet(t *testing.T) {
	client := testClient(t, func(req *sip.Request) *sip.Response {
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	dc := NewDialogClient(client, sip.ContactHeader{Address: sip.Uri{User: "uac", Host: "uac.p1.com"}})
	invite := sip.NewRequest(sip.INVITE, sip.Uri{User: "test", Host: "localhost"})
	invite.AppendHeader(sip.NewHeader("Contact", "<sip:uac@uac.p1.com>"))

	t.Run("LooseRouting", func(t *testing.T) {
		resp := sip.NewResponseFromRequest(invite, 200, "OK", nil)
		resp.AppendHeader(sip.NewHeader("Contact", "<sip:uas@uas.p2.com>"))
		// Fake some proxy headers
		resp.AppendHeader(sip.NewHeader("Record-Route", "<sip:p2.com;lr>"))
		resp.AppendHeader(sip.NewHeader("Record-Route", "<sip:p1.com;lr>"))

		s := &DialogClientSession{
			Dialog: Dialog{
				InviteRequest:  invite,
				InviteResponse: resp,
			},
			dc: dc,
		}

		ack := sip.NewAckRequest(s.InviteRequest, s.InviteResponse, nil)
		assert.Equal(t, "sip:uas@uas.p2.com", ack.Recipient.String())
		route, _ := ack.Route()
		assert.Equal(t, "<sip:p1.com;lr>", route.Value())
		assert.Equal(t, "<sip:p2.com;lr>", ack.GetHeaders("Route")[1].Value())

		bye := newByeRequestUAC(s.InviteRequest, s.InviteResponse, nil)
		assert.Equal(t, "sip:uas@uas.p2.com", bye.Recipient.String())
		byeRoute, _ := bye.Route()
		assert.Equal(t, "<sip:p1.com;lr>", byeRoute.Value())
		assert.Equal(t, "<sip:p2.com;lr>", bye.GetHeaders("Route")[1].Value())
	})

	t.Run("StrictRouting", func(t *testing.T) {
		resp := sip.NewResponseFromRequest(invite, 200, "OK", nil)
		resp.AppendHeader(sip.NewHeader("Contact", "<sip:uas@uas.p2.com>"))
		// Fake some proxy headers, closest proxy does not support loose routing
		resp.AppendHeader(sip.NewHeader("Record-Route", "<sip:p2.com;lr>"))
		resp.AppendHeader(sip.NewHeader("Record-Route", "<sip:p1.com>"))

		s := &DialogClientSession{
			Dialog: Dialog{
				InviteRequest:  invite,
				InviteResponse: resp,
			},
			dc: dc,
		}

		ack := sip.NewAckRequest(s.InviteRequest, s.InviteResponse, nil)
		assert.Equal(t, "sip:p1.com", ack.Recipient.String())
		route, _ := ack.Route()
		assert.Equal(t, "<sip:p1.com>", route.Value())
		assert.Equal(t, "<sip:p2.com;lr>", ack.GetHeaders("Route")[1].Value())

		bye := newByeRequestUAC(s.InviteRequest, s.InviteResponse, nil)
		assert.Equal(t, "sip:p1.com", bye.Recipient.String())
		byeRoute, _ := bye.Route()
		assert.Equal(t, "<sip:p1.com>", byeRoute.Value())
		assert.Equal(t, "<sip:p2.com;lr>", bye.GetHeaders("Route")[1].Value())
	})
}

func TestDialogClientInviteAndBye(t *testing.T) {
	var sentReq *sip.Request
	client := testClient(t, func(req *sip.Request) *sip.Response {
		sentReq = req
		return sip.NewResponseFromRequest(req, 200, "OK", nil)
	})

	dc := NewDialogClient(client, sip.ContactHeader{Address: sip.Uri{User: "test", Host: "localhost"}})
	d, err := dc.Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
	require.NoError(t, err)

	_, ok := d.InviteRequest.From()
	assert.True(t, ok)
	_, ok = d.InviteRequest.To()
	assert.True(t, ok)
	_, ok = d.InviteRequest.Contact()
	assert.True(t, ok)
	_, ok = d.InviteRequest.CallID()
	assert.True(t, ok)
	_, ok = d.InviteRequest.MaxForwards()
	assert.True(t, ok)

	err = d.WaitAnswer(context.Background(), AnswerOptions{})
	require.NoError(t, err)

	err = d.Ack(context.Background())
	require.NoError(t, err)

	inviteCseq, _ := d.InviteRequest.CSeq()
	sentCseq, _ := sentReq.CSeq()
	assert.Equal(t, inviteCseq.SeqNo, sentCseq.SeqNo)

	reinvite := sip.NewRequest(sip.INVITE, sip.Uri{User: "reinvite", Host: "localhost"})
	_, err = d.Do(context.Background(), reinvite)
	require.NoError(t, err)

	sentCseq, _ = sentReq.CSeq()
	assert.Equal(t, inviteCseq.SeqNo+1, sentCseq.SeqNo)

	err = d.Bye(context.Background())
	require.NoError(t, err)
}

func TestDialogClientMultiResponses(t *testing.T) {
	dc := func(client *Client) *DialogClient {
		return NewDialogClient(client, sip.ContactHeader{Address: sip.Uri{User: "test", Host: "localhost"}})
	}

	t.Run("ProvisionalLoop", func(t *testing.T) {
		client := testClient(t, func(req *sip.Request) *sip.Response {
			return sip.NewResponseFromRequest(req, 100, "Trying", nil)
		})

		d, err := dc(client).Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err = d.WaitAnswer(ctx, AnswerOptions{})
		require.Error(t, err)
	})

	t.Run("ProxyAuthLoop", func(t *testing.T) {
		var sentReq *sip.Request
		client := testClient(t, func(req *sip.Request) *sip.Response {
			sentReq = req
			res := sip.NewResponseFromRequest(req, 407, "Unauthorized", nil)
			challenge := `Digest username="user", realm="test", nonce="662d65a084b88c6d2a745a9de086fa91", uri="sip:+user@example.com", algorithm=sha-256, response="3681b63e5d9c3bb80e5350e2783d7b88"`
			res.AppendHeader(sip.NewHeader("Proxy-Authenticate", challenge))
			return res
		})

		d, err := dc(client).Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
		require.NoError(t, err)

		err = d.WaitAnswer(context.Background(), AnswerOptions{Password: "secret"})
		require.Error(t, err)
		inviteCseq, _ := d.InviteRequest.CSeq()
		sentCseq, _ := sentReq.CSeq()
		assert.Equal(t, inviteCseq.SeqNo, sentCseq.SeqNo)
	})

	t.Run("AuthLoop", func(t *testing.T) {
		var sentReq *sip.Request
		client := testClient(t, func(req *sip.Request) *sip.Response {
			sentReq = req
			res := sip.NewResponseFromRequest(req, 401, "Unauthorized", nil)
			challenge := `Digest username="user", realm="test", nonce="662d65a084b88c6d2a745a9de086fa91", uri="sip:+user@example.com", algorithm=sha-256, response="3681b63e5d9c3bb80e5350e2783d7b88"`
			res.AppendHeader(sip.NewHeader("WWW-Authenticate", challenge))
			return res
		})

		d, err := dc(client).Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
		require.NoError(t, err)

		err = d.WaitAnswer(context.Background(), AnswerOptions{Password: "secret"})
		require.Error(t, err)
		inviteCseq, _ := d.InviteRequest.CSeq()
		sentCseq, _ := sentReq.CSeq()
		assert.Equal(t, inviteCseq.SeqNo, sentCseq.SeqNo)
	})
}

func TestDialogClientACKRetransmission(t *testing.T) {
	var acks int32
	client := testClientResponder(t, func(req *sip.Request, w *siptest.ClientTxResponder) {
		if req.IsAck() {
			atomic.AddInt32(&acks, 1)
			return
		}

		res := sip.NewResponseFromRequest(req, 200, "OK", nil)
		w.Receive(res)
		time.Sleep(transaction.DefaultTimers().T1)
		w.Receive(res)
		time.Sleep(transaction.DefaultTimers().T1)
		w.Receive(res)
	})

	dc := NewDialogClient(client, sip.ContactHeader{Address: sip.Uri{User: "test", Host: "localhost"}})
	d, err := dc.Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
	require.NoError(t, err)
	err = d.WaitAnswer(context.Background(), AnswerOptions{})
	require.NoError(t, err)

	if err := d.Ack(context.Background()); err != nil {
		t.Error(err)
	}
	time.Sleep(4 * transaction.DefaultTimers().T1)
	state := d.LoadState()
	assert.Equal(t, sip.DialogStateConfirmed, state)
	assert.EqualValues(t, 3, atomic.LoadInt32(&acks))
}

func BenchmarkDialogDo(b *testing.B) {
	ua, _ := NewUA()
	cli, _ := NewClient(ua)
	cli.TxRequester = &siptest.ClientTxRequester{
		OnRequest: func(req *sip.Request) *sip.Response {
			return sip.NewResponseFromRequest(req, 200, "OK", nil)
		},
	}
	dc := NewDialogClient(cli, sip.ContactHeader{Address: sip.Uri{User: "test", Host: "localhost"}})

	dialog, err := dc.Invite(context.Background(), sip.Uri{User: "test", Host: "localhost"}, nil)
	if err != nil {
		b.Fatal(err)
	}
	dialog.WaitAnswer(context.Background(), AnswerOptions{})

	b.Run("ACK", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			dialog.Ack(context.Background())
		}
	})
	b.Run("NotSupported", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			req := sip.NewRequest(sip.REFER, sip.Uri{User: "refer", Host: "localhost"})
			dialog.Do(context.Background(), req)
		}
	})
}
