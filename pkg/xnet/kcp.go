package xnet

import (
	"context"
	"net"

	"github.com/xtaci/kcp-go"
)

// KCP 传输(udp上的可靠流)
func KCP() Endpoint[net.Conn] {
	return Endpoint[net.Conn]{Dial: DialKCP, Listen: ListenKCP}
}

// kcpConn kcp无FIN, 结束帧和关闭前的等待由上层channel负责
type kcpConn struct {
	*kcp.UDPSession
	release func() // session关闭后释放监听
}

func newKCPConn(sess *kcp.UDPSession, release func()) *kcpConn {
	sess.SetStreamMode(true)
	sess.SetWriteDelay(false)
	sess.SetACKNoDelay(kcpAckNoDelay)
	sess.SetNoDelay(kcpNoDelay, kcpInterval, kcpResend, kcpNC)
	return &kcpConn{UDPSession: sess, release: release}
}

func (c *kcpConn) Close() error {
	err := c.UDPSession.Close()
	if c.release != nil {
		c.release()
	}
	return err
}

// DialKCP 只创建本地socket不做握手, 因此只检查ctx是否已取消
func DialKCP(ctx context.Context, addr string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := kcp.DialWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	return newKCPConn(sess, nil), nil
}

type KCPServer struct {
	listener *kcp.Listener
	accepted bool
}

func ListenKCP(ctx context.Context, addr string) (Acceptor[net.Conn], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	return &KCPServer{listener: listener}, nil
}

// Accept kcp在收到第一个数据包后才建立session
func (svr *KCPServer) Accept(ctx context.Context) (net.Conn, error) {
	stop := AfterFunc(ctx, func() { _ = svr.listener.Close() })
	defer stop()

	sess, err := svr.listener.AcceptKCP()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	svr.accepted = true
	return newKCPConn(sess, func() { _ = svr.listener.Close() }), nil
}

func (svr *KCPServer) Addr() net.Addr {
	return svr.listener.Addr()
}

// Close 已接受的session共用监听的udp socket, 由session关闭时释放
func (svr *KCPServer) Close() error {
	if svr.accepted {
		return nil
	}
	return svr.listener.Close()
}
