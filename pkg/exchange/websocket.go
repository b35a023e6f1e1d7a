package exchange

import (
	"context"
	"io"
	"sync"
	"time"

	"pingpong/pkg/player"
	"pingpong/pkg/xmsg"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const wsCloseWait = 200 * time.Millisecond

// WSChannel websocket上的channel, 每条binary消息一个xmsg数据包
type WSChannel struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

type wsDeadliner struct {
	conn *websocket.Conn
}

func (d wsDeadliner) SetDeadline(t time.Time) error {
	if err := d.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return d.conn.SetWriteDeadline(t)
}

func (c *WSChannel) Send(ctx context.Context, rec player.Record) error {
	stop := interruptOnCancel(ctx, wsDeadliner{c.conn})
	defer stop()

	msg, err := xmsg.PackMsg(packRecord(rec))
	if err != nil {
		return errors.Wrap(err, "websocket pack")
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "websocket send")
	}
	return nil
}

func (c *WSChannel) Receive(ctx context.Context) (player.Record, error) {
	stop := interruptOnCancel(ctx, wsDeadliner{c.conn})
	defer stop()

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return player.Record{}, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return player.Record{}, io.EOF
		}
		return player.Record{}, errors.Wrap(err, "websocket receive")
	}
	header, payload, err := xmsg.UnpackMsg(msg)
	if err != nil {
		return player.Record{}, errors.Wrap(err, "websocket unpack")
	}
	rec, err := unpackRecord(header, payload)
	if err == io.EOF {
		return player.Record{}, io.EOF
	}
	if err != nil {
		return player.Record{}, errors.Wrap(err, "websocket decode")
	}
	return rec, nil
}

// Close 发送close帧后关闭连接
func (c *WSChannel) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(wsCloseWait))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
