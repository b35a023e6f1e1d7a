package xnet

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

const (
	tcpNetwork = "tcp"

	dialTimeout = 3 * time.Second // 建立连接超时

	maxMessageSize = 1<<20 + 64 // websocket单条消息上限

	// kcp参数, 极速模式
	kcpNoDelay    = 1
	kcpInterval   = 10
	kcpResend     = 2
	kcpNC         = 1
	kcpAckNoDelay = true
)

// WSPath websocket路由
const WSPath = "/pingpong"

// Role 会话中的角色
type Role int

const (
	Initiator Role = iota // 主动连接, 先发送
	Responder             // 监听等待, 先接收
)

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return "unknown"
	}
}

// Acceptor 只接受一个连接的监听端
type Acceptor[C any] interface {
	Accept(ctx context.Context) (C, error)
	Addr() net.Addr
	Close() error
}

// Endpoint 一种传输方式的拨号/监听
type Endpoint[C any] struct {
	Dial   func(ctx context.Context, addr string) (C, error)
	Listen func(ctx context.Context, addr string) (Acceptor[C], error)
}

// IsConnRefused 连接被拒绝(对端未监听)
func IsConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsAddrInUse 端口已被占用
func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// AfterFunc ctx取消时执行fn, 返回的stop用于解除监听, 返回后fn不会再执行
func AfterFunc(ctx context.Context, fn func()) (stop func()) {
	if ctx.Done() == nil {
		return func() {}
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		select {
		case <-ctx.Done():
			fn()
		case <-stopCh:
		}
	}()
	return func() {
		close(stopCh)
		<-doneCh
	}
}
