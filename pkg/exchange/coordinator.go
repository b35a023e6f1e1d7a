package exchange

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"

	"pingpong/pkg/player"
	"pingpong/pkg/xactor"
	"pingpong/pkg/xcommon"
	"pingpong/pkg/xenv"
	"pingpong/pkg/xlog"
	"pingpong/pkg/xnet"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Coordinator 创建两个player并连接channel, 启动exchange loop
type Coordinator struct {
	conf   xenv.Config
	onRole func(xnet.Role)
	out    io.Writer
}

type Option func(*Coordinator)

// WithRoleHook 角色确定且连接/监听就绪后回调
func WithRoleHook(fn func(xnet.Role)) Option {
	return func(c *Coordinator) { c.onRole = fn }
}

// WithSummary 会话结束后汇总表输出位置, nil不输出
func WithSummary(w io.Writer) Option {
	return func(c *Coordinator) { c.out = w }
}

func New(conf xenv.Config, opts ...Option) (*Coordinator, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	c := &Coordinator{conf: conf, out: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Coordinator) notifyRole(role xnet.Role) {
	if c.onRole != nil {
		c.onRole(role)
	}
}

// RunSingle 单进程模式: 两个协程通过mailbox交换消息, 等待双方结束
func (c *Coordinator) RunSingle(ctx context.Context) ([]Result, error) {
	initiatorCh, responderCh := NewQueuePair(c.conf.QueueSize)
	loops := []*Loop{
		NewLoop(player.New(c.conf.InitiatorName), xnet.Initiator, initiatorCh, c.conf.MaxMessages),
		NewLoop(player.New(c.conf.ResponderName), xnet.Responder, responderCh, c.conf.MaxMessages),
	}

	// 先启动响应方, 发起方启动即发送问候语
	group := xactor.NewGroup(ctx)
	for i := len(loops) - 1; i >= 0; i-- {
		if _, err := group.Spawn(loops[i]); err != nil {
			group.CloseAll(ctx)
			return nil, err
		}
	}
	err := group.Wait(ctx)

	results := make([]Result, 0, len(loops))
	for _, l := range loops {
		results = append(results, l.Result())
	}
	if err != nil {
		return results, err
	}
	xlog.Get(ctx).Info("Ending program: stop condition achieved.")
	c.summary(ctx, results...)
	return results, nil
}

// RunSeparate 双进程模式: 连接成功为发起方, 连接被拒绝则监听作为响应方
func (c *Coordinator) RunSeparate(ctx context.Context) (Result, error) {
	ctx = xlog.WithPid(ctx)

	ch, role, err := c.connect(ctx)
	if err != nil {
		return Result{}, err
	}
	if role == xnet.Initiator {
		c.notifyRole(role)
	}

	name := c.conf.ResponderName
	if role == xnet.Initiator {
		name = c.conf.InitiatorName
	}
	res, err := NewLoop(player.New(name), role, ch, c.conf.MaxMessages).Exec(ctx)
	if err != nil {
		return res, err
	}
	c.summary(ctx, res)
	return res, nil
}

func (c *Coordinator) connect(ctx context.Context) (Channel, xnet.Role, error) {
	addr := c.conf.Addr()
	switch c.conf.Transport {
	case xenv.TransportTCP:
		conn, role, err := xnet.DialOrListen(ctx, addr, xnet.TCP(), func(xnet.Acceptor[net.Conn]) {
			c.notifyRole(xnet.Responder)
		})
		if err != nil {
			return nil, role, err
		}
		return NewStreamChannel(conn), role, nil
	case xenv.TransportKCP:
		conn, role, err := xnet.ListenOrDial(ctx, addr, xnet.KCP(), func(xnet.Acceptor[net.Conn]) {
			c.notifyRole(xnet.Responder)
		})
		if err != nil {
			return nil, role, err
		}
		return NewStreamChannel(conn), role, nil
	case xenv.TransportWebsocket:
		conn, role, err := xnet.DialOrListen(ctx, addr, xnet.Websocket(), func(xnet.Acceptor[*websocket.Conn]) {
			c.notifyRole(xnet.Responder)
		})
		if err != nil {
			return nil, role, err
		}
		return NewWSChannel(conn), role, nil
	default:
		return nil, xnet.Initiator, errors.Errorf("unknown transport %q", c.conf.Transport)
	}
}

func (c *Coordinator) summary(ctx context.Context, results ...Result) {
	if c.out == nil {
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, r.Role.String(), strconv.Itoa(int(r.Sent)), strconv.Itoa(int(r.PeerSent)), r.Reason.String()})
	}
	xcommon.FprintTable(ctx, c.out, []string{"player", "role", "sent", "peer sent", "reason"}, rows)
}
