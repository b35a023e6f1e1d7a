package xnet

import (
	"context"
	"net"
)

// TCP 传输
func TCP() Endpoint[net.Conn] {
	return Endpoint[net.Conn]{Dial: DialTCP, Listen: ListenTCP}
}

func DialTCP(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, tcpNetwork, addr)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

type TCPServer struct {
	listener net.Listener
}

func ListenTCP(ctx context.Context, addr string) (Acceptor[net.Conn], error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, tcpNetwork, addr)
	if err != nil {
		return nil, err
	}
	return &TCPServer{listener: listener}, nil
}

func (svr *TCPServer) Accept(ctx context.Context) (net.Conn, error) {
	// ctx取消时关闭listener打断Accept
	stop := AfterFunc(ctx, func() { _ = svr.listener.Close() })
	defer stop()

	conn, err := svr.listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (svr *TCPServer) Addr() net.Addr {
	return svr.listener.Addr()
}

func (svr *TCPServer) Close() error {
	return svr.listener.Close()
}
