package exchange

import (
	"context"
	"io"

	"pingpong/pkg/player"
	"pingpong/pkg/xlog"
	"pingpong/pkg/xnet"

	"go.uber.org/zap"
)

type State int

const (
	AwaitingPeer State = iota
	Responding
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingPeer:
		return "awaiting_peer"
	case Responding:
		return "responding"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason 结束原因
type Reason int

const (
	ReasonNone       Reason = iota
	ReasonMutual            // 双方均达到上限
	ReasonPeerClosed        // 对端关闭
)

func (r Reason) String() string {
	switch r {
	case ReasonMutual:
		return "mutual"
	case ReasonPeerClosed:
		return "peer_closed"
	default:
		return "none"
	}
}

// Result 一个player的会话结果
type Result struct {
	Name     string
	Role     xnet.Role
	Sent     int32
	PeerSent int32
	Last     string // 最后发送的内容
	Reason   Reason
}

// Loop 驱动一个player: 接收 => 回复 => 发送 => 判断结束.
// 发起方从Responding开始, 响应方从AwaitingPeer开始
type Loop struct {
	self *player.Player
	role xnet.Role
	ch   Channel
	max  int32

	state    State
	peer     player.Record
	havePeer bool
	reason   Reason
}

func NewLoop(self *player.Player, role xnet.Role, ch Channel, maxMessages int) *Loop {
	return &Loop{self: self, role: role, ch: ch, max: int32(maxMessages)}
}

func (l *Loop) Name() string { return l.self.Name() }

func (l *Loop) State() State { return l.state }

// Run xactor.ActorState
func (l *Loop) Run(ctx context.Context) error {
	_, err := l.Exec(ctx)
	return err
}

func (l *Loop) Result() Result {
	return Result{
		Name:     l.self.Name(),
		Role:     l.role,
		Sent:     l.self.Count(),
		PeerSent: l.peer.Count,
		Last:     l.self.Message(),
		Reason:   l.reason,
	}
}

// 双方都达到上限. 未收到对端消息前不成立
func (l *Loop) done() bool {
	return l.havePeer && l.self.Count() >= l.max && l.peer.Count >= l.max
}

func (l *Loop) terminate(ctx context.Context, reason Reason) {
	l.state = Terminated
	l.reason = reason
	xlog.Get(ctx).Info("Closing.", zap.String("player", l.self.Name()), zap.Stringer("reason", reason),
		zap.Int32("sent", l.self.Count()), zap.Int32("peer_sent", l.peer.Count))
}

func (l *Loop) send(ctx context.Context, rec player.Record) error {
	xlog.Get(ctx).Info("Sending.", zap.String("player", rec.Name), zap.Int32("count", rec.Count), zap.String("content", rec.Message))
	return l.ch.Send(ctx, rec)
}

// Exec 运行至Terminated或出错, 任何退出路径都会关闭channel
func (l *Loop) Exec(ctx context.Context) (Result, error) {
	ctx = xlog.NewContext(ctx, zap.Stringer("role", l.role))
	defer func() {
		if err := l.ch.Close(ctx); err != nil {
			xlog.Get(ctx).Debug("Close channel failed.", zap.Error(err))
		}
	}()

	if l.role == xnet.Initiator {
		// 发起方首条消息: 问候语
		l.state = Responding
		if err := ctx.Err(); err != nil {
			return l.Result(), err
		}
		if err := l.send(ctx, l.self.Open()); err != nil {
			return l.Result(), err
		}
	}
	l.state = AwaitingPeer

	for l.state != Terminated {
		// 取消后不再收发, 不重试
		if err := ctx.Err(); err != nil {
			return l.Result(), err
		}
		switch l.state {
		case AwaitingPeer:
			rec, err := l.ch.Receive(ctx)
			if err == io.EOF {
				l.terminate(ctx, ReasonPeerClosed)
				continue
			}
			if err != nil {
				return l.Result(), err
			}
			l.peer, l.havePeer = rec, true
			if l.done() {
				l.terminate(ctx, ReasonMutual)
				continue
			}
			l.state = Responding

		case Responding:
			if err := l.send(ctx, l.self.RespondTo(l.peer)); err != nil {
				return l.Result(), err
			}
			if l.done() {
				l.terminate(ctx, ReasonMutual)
				continue
			}
			l.state = AwaitingPeer
		}
	}
	return l.Result(), nil
}
