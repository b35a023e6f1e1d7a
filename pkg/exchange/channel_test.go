package exchange_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"pingpong/pkg/exchange"
	"pingpong/pkg/player"
	"pingpong/pkg/xmsg"
	"pingpong/pkg/xnet"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueChannelFIFO(t *testing.T) {
	ctx := context.Background()
	a, b := exchange.NewQueuePair(8)

	for i := int32(1); i <= 5; i++ {
		require.NoError(t, a.Send(ctx, player.Record{Name: "a", Count: i}))
	}
	require.NoError(t, a.Close(ctx))

	for i := int32(1); i <= 5; i++ {
		rec, err := b.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Count)
	}
	_, err := b.Receive(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestStreamChannel(t *testing.T) {
	ctx := context.Background()
	left, right := net.Pipe()
	a, b := exchange.NewStreamChannel(left), exchange.NewStreamChannel(right)

	want := player.Record{Name: "Initiator", Message: "[Hello!]", Count: 1}
	errCh := make(chan error, 1)
	go func() { errCh <- a.Send(ctx, want) }()

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	assert.Equal(t, want, got)

	// a等待b的结束帧后才关闭
	closed := make(chan error, 1)
	go func() { closed <- a.Close(ctx) }()
	_, err = b.Receive(ctx)
	assert.Equal(t, io.EOF, err)
	require.NoError(t, b.Close(ctx))
	require.NoError(t, <-closed)
	require.NoError(t, a.Close(ctx))
}

func TestStreamChannelCloseFrame(t *testing.T) {
	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()
	go func() {
		_ = xmsg.WriteMsg(left, xmsg.PackMsgArgs{Cmd: xmsg.CmdClose})
	}()

	_, err := exchange.NewStreamChannel(right).Receive(context.Background())
	assert.Equal(t, io.EOF, err)
}

// kcp没有FIN: 发送最后一条后立即Close, 对端仍能收到这条消息和结束帧
func TestStreamChannelKCPCloseAfterLastSend(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	acceptor, err := xnet.ListenKCP(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer acceptor.Close()

	cliConn, err := xnet.DialKCP(ctx, acceptor.Addr().String())
	require.NoError(t, err)
	cli := exchange.NewStreamChannel(cliConn)

	// 收到第一个数据包后才能accept
	hello := player.Record{Name: "Initiator", Message: "[Hello!]", Count: 1}
	require.NoError(t, cli.Send(ctx, hello))
	svrConn, err := acceptor.Accept(ctx)
	require.NoError(t, err)
	svr := exchange.NewStreamChannel(svrConn)

	got, err := svr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, hello, got)

	last := player.Record{Name: "Server", Message: "[Hello!] [reply0]", Count: 1}
	closed := make(chan error, 1)
	go func() {
		if err := svr.Send(ctx, last); err != nil {
			closed <- err
			return
		}
		closed <- svr.Close(ctx)
	}()

	got, err = cli.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, last, got)
	_, err = cli.Receive(ctx)
	assert.Equal(t, io.EOF, err)
	require.NoError(t, cli.Close(ctx))
	require.NoError(t, <-closed)
}

func TestStreamChannelRejectsBadFrames(t *testing.T) {
	ctx := context.Background()
	frames := []xmsg.PackMsgArgs{
		{Seq: 1, Cmd: 99, Payload: player.Marshal(player.Record{Count: 1})},
		{Seq: 2, Cmd: xmsg.CmdRecord, Payload: player.Marshal(player.Record{Count: 1})},
		{Seq: 1, Cmd: xmsg.CmdRecord, Payload: []byte{0x0a, 0x05, 'a'}},
	}
	for _, frame := range frames {
		left, right := net.Pipe()
		go func(frame xmsg.PackMsgArgs) {
			_ = xmsg.WriteMsg(left, frame)
		}(frame)

		_, err := exchange.NewStreamChannel(right).Receive(ctx)
		assert.Error(t, err)
		assert.NotEqual(t, io.EOF, err)
		_ = left.Close()
		_ = right.Close()
	}
}

func TestStreamChannelCancel(t *testing.T) {
	left, right := net.Pipe()
	ch := exchange.NewStreamChannel(right)
	defer ch.Close(context.Background())
	defer left.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ch.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWSChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	acceptor, err := xnet.ListenWS(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer acceptor.Close()

	connCh := make(chan *websocket.Conn, 1)
	go func() {
		conn, err := acceptor.Accept(ctx)
		if err == nil {
			connCh <- conn
		}
		close(connCh)
	}()

	cliConn, err := xnet.DialWS(ctx, acceptor.Addr().String())
	require.NoError(t, err)
	svrConn, ok := <-connCh
	require.True(t, ok)

	cli, svr := exchange.NewWSChannel(cliConn), exchange.NewWSChannel(svrConn)
	want := player.Record{Name: "Server", Message: "[Hello!] [reply0]", Count: 1}
	require.NoError(t, svr.Send(ctx, want))
	got, err := cli.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, svr.Close(ctx))
	_, err = cli.Receive(ctx)
	assert.Equal(t, io.EOF, err)
	_ = cli.Close(ctx)
}
