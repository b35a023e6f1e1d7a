package exchange

import (
	"context"
	"time"

	"pingpong/pkg/player"
	"pingpong/pkg/xactor"
	"pingpong/pkg/xnet"

	"github.com/pkg/errors"
)

// Channel 一个player的收发端.
// Receive在对端关闭后返回io.EOF, 表示不再有消息而非错误.
type Channel interface {
	Send(ctx context.Context, rec player.Record) error
	Receive(ctx context.Context) (player.Record, error)
	Close(ctx context.Context) error
}

// QueueChannel 单进程模式: 读自己的mailbox, 写对端的mailbox
type QueueChannel struct {
	in  *xactor.Mailbox[player.Record]
	out *xactor.Mailbox[player.Record]
}

// NewQueuePair 交叉连接的两个channel
func NewQueuePair(size int) (*QueueChannel, *QueueChannel) {
	a := xactor.NewMailbox[player.Record](size)
	b := xactor.NewMailbox[player.Record](size)
	return &QueueChannel{in: a, out: b}, &QueueChannel{in: b, out: a}
}

func (c *QueueChannel) Send(ctx context.Context, rec player.Record) error {
	if err := c.out.Send(ctx, rec); err != nil {
		return errors.Wrap(err, "queue send")
	}
	return nil
}

func (c *QueueChannel) Receive(ctx context.Context) (player.Record, error) {
	return c.in.Recv(ctx)
}

// Close 关闭写方向, 对端取完剩余消息后收到io.EOF
func (c *QueueChannel) Close(ctx context.Context) error {
	c.out.Close()
	return nil
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// ctx取消时设置过期deadline打断阻塞读写
func interruptOnCancel(ctx context.Context, conn deadliner) (stop func()) {
	return xnet.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
}
