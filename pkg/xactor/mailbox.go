package xactor

import (
	"context"
	"errors"
	"io"
	"sync"
)

var ErrMailboxClosed = errors.New("xactor: mailbox closed")

// 默认mail容量
const mailMaxCount = 100

// Mailbox 有界FIFO, 单生产者单消费者.
// 满时Send阻塞, 空时Recv阻塞; Close后Recv先取完剩余mail再返回io.EOF
type Mailbox[T any] struct {
	mailCh    chan T
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewMailbox[T any](size int) *Mailbox[T] {
	if size <= 0 {
		size = mailMaxCount
	}
	return &Mailbox[T]{
		mailCh:  make(chan T, size),
		closeCh: make(chan struct{}),
	}
}

func (box *Mailbox[T]) Send(ctx context.Context, m T) error {
	select {
	case <-box.closeCh:
		return ErrMailboxClosed
	default:
	}
	select {
	case box.mailCh <- m:
		return nil
	case <-box.closeCh:
		return ErrMailboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (box *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case m := <-box.mailCh:
		return m, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-box.closeCh:
		// 关闭前已投递的mail依然有效
		select {
		case m := <-box.mailCh:
			return m, nil
		default:
			return zero, io.EOF
		}
	}
}

// Close 可重复调用
func (box *Mailbox[T]) Close() {
	box.closeOnce.Do(func() {
		close(box.closeCh)
	})
}
