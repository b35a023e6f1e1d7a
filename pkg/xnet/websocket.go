package xnet

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"pingpong/pkg/xlog"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Websocket 传输
func Websocket() Endpoint[*websocket.Conn] {
	return Endpoint[*websocket.Conn]{Dial: DialWS, Listen: ListenWS}
}

func DialWS(ctx context.Context, addr string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: WSPath}
	dialer := &websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

type WSServer struct {
	upgrader *websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	connCh chan *websocket.Conn // 只接受一个连接
	errCh  chan error
}

func ListenWS(ctx context.Context, addr string) (Acceptor[*websocket.Conn], error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, tcpNetwork, addr)
	if err != nil {
		return nil, err
	}
	svr := &WSServer{
		upgrader: &websocket.Upgrader{},
		listener: listener,
		connCh:   make(chan *websocket.Conn, 1),
		errCh:    make(chan error, 1),
	}
	// 注册websocket路由
	mux := http.NewServeMux()
	mux.Handle(WSPath, http.HandlerFunc(svr.upgrade))
	svr.httpSrv = &http.Server{
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := svr.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			svr.errCh <- err
		}
	}()
	return svr, nil
}

func (svr *WSServer) upgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := svr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader will respond
		xlog.Get(ctx).Warn("Upgrade connection failed.", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	select {
	case svr.connCh <- conn:
	default:
		// 已有对端
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "session busy"))
		_ = conn.Close()
	}
}

func (svr *WSServer) Accept(ctx context.Context) (*websocket.Conn, error) {
	select {
	case conn := <-svr.connCh:
		return conn, nil
	case err := <-svr.errCh:
		return nil, errors.Wrap(err, "websocket serve")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (svr *WSServer) Addr() net.Addr {
	return svr.listener.Addr()
}

// Close 关闭http服务, 已升级的连接不受影响
func (svr *WSServer) Close() error {
	return svr.httpSrv.Close()
}
