package exchange_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"pingpong/pkg/exchange"
	"pingpong/pkg/xenv"
	"pingpong/pkg/xnet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, transport string, max int) xenv.Config {
	t.Helper()
	conf := xenv.Default()
	conf.Host = "127.0.0.1"
	conf.Transport = transport
	conf.MaxMessages = max

	var addr net.Addr
	if transport == xenv.TransportKCP {
		c, err := net.ListenPacket("udp", "127.0.0.1:0")
		require.NoError(t, err)
		addr = c.LocalAddr()
		require.NoError(t, c.Close())
	} else {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr = l.Addr()
		require.NoError(t, l.Close())
	}
	_, port, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	conf.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	return conf
}

func TestRunSingle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var summary bytes.Buffer
	conf := testConfig(t, xenv.TransportTCP, 4)
	c, err := exchange.New(conf, exchange.WithSummary(&summary))
	require.NoError(t, err)

	results, err := c.RunSingle(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.EqualValues(t, 4, res.Sent, res.Name)
		assert.EqualValues(t, 4, res.PeerSent, res.Name)
		assert.Equal(t, exchange.ReasonMutual, res.Reason, res.Name)
	}
	assert.Equal(t, "Initiator", results[0].Name)
	assert.Equal(t, "Server", results[1].Name)
	assert.Contains(t, summary.String(), "Initiator")
}

func TestRunSingleCancelled(t *testing.T) {
	conf := testConfig(t, xenv.TransportTCP, 1)
	c, err := exchange.New(conf, exchange.WithSummary(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RunSingle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	conf := xenv.Default()
	conf.MaxMessages = -1
	_, err := exchange.New(conf)
	assert.Error(t, err)
}

// 第一个节点连接失败转为监听, 第二个节点连接成功作为发起方
func runSeparatePair(t *testing.T, conf xenv.Config) (first, second exchange.Result) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	roles := make(chan xnet.Role, 1)
	c1, err := exchange.New(conf, exchange.WithSummary(io.Discard), exchange.WithRoleHook(func(r xnet.Role) { roles <- r }))
	require.NoError(t, err)

	type out struct {
		res exchange.Result
		err error
	}
	firstCh := make(chan out, 1)
	go func() {
		res, err := c1.RunSeparate(ctx)
		firstCh <- out{res, err}
	}()

	select {
	case role := <-roles:
		require.Equal(t, xnet.Responder, role)
	case <-ctx.Done():
		t.Fatal("first node never listened")
	}

	c2, err := exchange.New(conf, exchange.WithSummary(io.Discard))
	require.NoError(t, err)
	second, err = c2.RunSeparate(ctx)
	require.NoError(t, err)

	r := <-firstCh
	require.NoError(t, r.err)
	return r.res, second
}

func TestRunSeparateRoleFallback(t *testing.T) {
	for _, transport := range []string{xenv.TransportTCP, xenv.TransportWebsocket, xenv.TransportKCP} {
		t.Run(transport, func(t *testing.T) {
			first, second := runSeparatePair(t, testConfig(t, transport, 3))

			assert.Equal(t, xnet.Responder, first.Role)
			assert.Equal(t, "Server", first.Name)
			assert.Equal(t, xnet.Initiator, second.Role)
			assert.Equal(t, "Initiator", second.Name)

			for _, res := range []exchange.Result{first, second} {
				assert.EqualValues(t, 3, res.Sent, res.Name)
				assert.EqualValues(t, 3, res.PeerSent, res.Name)
				assert.Equal(t, exchange.ReasonMutual, res.Reason, res.Name)
			}
			assert.Equal(t, "[Hello!] [reply0] [reply1] [reply1] [reply2] [reply2]", first.Last)
		})
	}
}

func TestRunSeparateZeroMax(t *testing.T) {
	for _, transport := range []string{xenv.TransportTCP, xenv.TransportWebsocket, xenv.TransportKCP} {
		t.Run(transport, func(t *testing.T) {
			first, second := runSeparatePair(t, testConfig(t, transport, 0))
			assert.Equal(t, exchange.ReasonMutual, first.Reason)
			assert.Zero(t, first.Sent)
			assert.Equal(t, exchange.ReasonPeerClosed, second.Reason)
			assert.EqualValues(t, 1, second.Sent)
		})
	}
}
