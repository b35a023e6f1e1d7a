package exchange

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"pingpong/pkg/player"
	"pingpong/pkg/xmsg"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// 关闭时等待对端结束帧的上限
const closeLinger = 2 * time.Second

// StreamChannel 流式连接(tcp, kcp)上的channel, 每条record一个xmsg数据包.
// Close先发送结束帧, 再等待对端的结束帧或流结束后才关闭连接,
// kcp没有FIN, 对端依靠结束帧得到io.EOF, 本端的等待保证最后的数据已送达
type StreamChannel struct {
	conn   net.Conn
	reader *bufio.Reader

	peerClosed *atomic.Bool
	closeOnce  sync.Once
	closeErr   error
}

func NewStreamChannel(conn net.Conn) *StreamChannel {
	return &StreamChannel{conn: conn, reader: bufio.NewReader(conn), peerClosed: atomic.NewBool(false)}
}

func packRecord(rec player.Record) xmsg.PackMsgArgs {
	return xmsg.PackMsgArgs{Seq: rec.Count, Cmd: xmsg.CmdRecord, Payload: player.Marshal(rec)}
}

// 结束帧返回io.EOF
func unpackRecord(header *xmsg.Header, payload []byte) (player.Record, error) {
	switch header.Cmd {
	case xmsg.CmdRecord:
	case xmsg.CmdClose:
		return player.Record{}, io.EOF
	default:
		return player.Record{}, errors.Errorf("unexpected cmd %d", header.Cmd)
	}
	rec, err := player.Unmarshal(payload)
	if err != nil {
		return player.Record{}, err
	}
	if rec.Count != header.Seq {
		return player.Record{}, errors.Errorf("record count %d mismatch header seq %d", rec.Count, header.Seq)
	}
	return rec, nil
}

func (c *StreamChannel) Send(ctx context.Context, rec player.Record) error {
	stop := interruptOnCancel(ctx, c.conn)
	defer stop()

	if err := xmsg.WriteMsg(c.conn, packRecord(rec)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "stream send")
	}
	return nil
}

func (c *StreamChannel) Receive(ctx context.Context) (player.Record, error) {
	stop := interruptOnCancel(ctx, c.conn)
	defer stop()

	header, payload, err := xmsg.ReadMsg(c.reader)
	if err != nil {
		if ctx.Err() != nil {
			return player.Record{}, ctx.Err()
		}
		if err == io.EOF {
			c.peerClosed.Store(true)
			return player.Record{}, io.EOF
		}
		return player.Record{}, errors.Wrap(err, "stream receive")
	}
	rec, err := unpackRecord(header, payload)
	if err == io.EOF {
		c.peerClosed.Store(true)
		return player.Record{}, io.EOF
	}
	if err != nil {
		return player.Record{}, errors.Wrap(err, "stream decode")
	}
	return rec, nil
}

// 丢弃剩余数据直到对端结束帧, 流结束或超时
func (c *StreamChannel) awaitPeerClose() {
	for {
		header, _, err := xmsg.ReadMsg(c.reader)
		if err != nil || header.Cmd == xmsg.CmdClose {
			return
		}
	}
}

// Close 发送结束帧, ctx未取消时等待对端结束帧, 最后关闭连接
func (c *StreamChannel) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		// 覆盖取消时设置的过期deadline
		_ = c.conn.SetDeadline(time.Now().Add(closeLinger))
		err := xmsg.WriteMsg(c.conn, xmsg.PackMsgArgs{Cmd: xmsg.CmdClose})
		if err == nil && ctx.Err() == nil && !c.peerClosed.Load() {
			c.awaitPeerClose()
		}
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
