package xnet

import (
	"context"

	"pingpong/pkg/xlog"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DialOrListen 先尝试连接addr, 连接被拒绝时转为监听并接受一个连接.
// onListen在监听建立后回调(可为nil)
func DialOrListen[C any](ctx context.Context, addr string, ep Endpoint[C], onListen func(Acceptor[C])) (C, Role, error) {
	conn, err := ep.Dial(ctx, addr)
	if err == nil {
		xlog.Get(ctx).Info("Connected as initiator.", zap.String("addr", addr))
		return conn, Initiator, nil
	}
	var zero C
	if !IsConnRefused(err) {
		return zero, Initiator, errors.Wrapf(err, "dial %s", addr)
	}

	xlog.Get(ctx).Info("Connection refused, switch to responder.", zap.String("addr", addr))
	conn, err = acceptOne(ctx, addr, ep, onListen)
	return conn, Responder, err
}

// ListenOrDial 无连接传输(kcp)的角色选择: 先绑定端口, 端口占用时作为发起方连接
func ListenOrDial[C any](ctx context.Context, addr string, ep Endpoint[C], onListen func(Acceptor[C])) (C, Role, error) {
	acceptor, err := ep.Listen(ctx, addr)
	if err != nil {
		var zero C
		if !IsAddrInUse(err) {
			return zero, Responder, errors.Wrapf(err, "listen %s", addr)
		}
		xlog.Get(ctx).Info("Address in use, switch to initiator.", zap.String("addr", addr))
		conn, err := ep.Dial(ctx, addr)
		if err != nil {
			return zero, Initiator, errors.Wrapf(err, "dial %s", addr)
		}
		return conn, Initiator, nil
	}
	conn, err := serveOne(ctx, acceptor, onListen)
	return conn, Responder, err
}

func acceptOne[C any](ctx context.Context, addr string, ep Endpoint[C], onListen func(Acceptor[C])) (C, error) {
	acceptor, err := ep.Listen(ctx, addr)
	if err != nil {
		var zero C
		return zero, errors.Wrapf(err, "listen %s", addr)
	}
	return serveOne(ctx, acceptor, onListen)
}

func serveOne[C any](ctx context.Context, acceptor Acceptor[C], onListen func(Acceptor[C])) (C, error) {
	// 只服务一个对端, 接受后关闭监听
	defer func() {
		_ = acceptor.Close()
	}()

	xlog.Get(ctx).Info("Start listen success.", zap.Stringer("addr", acceptor.Addr()))
	if onListen != nil {
		onListen(acceptor)
	}
	conn, err := acceptor.Accept(ctx)
	if err != nil {
		var zero C
		return zero, errors.Wrap(err, "accept")
	}
	return conn, nil
}
