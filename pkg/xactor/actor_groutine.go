package xactor

import (
	"context"
	"sync"

	"pingpong/pkg/xcommon"
	"pingpong/pkg/xlog"

	"go.uber.org/zap"
)

// ActorState 业务模块
type ActorState interface {
	Name() string                  // 名称, 组内唯一
	Run(ctx context.Context) error // 业务循环, ctx取消时须尽快返回
}

// ActorGroutine 单协程运行一个ActorState.
// 特性:
//	 1.ctx取消即退出, 不重试
//	 2.协程panic记录堆栈
//	 3.Wait可被调用方ctx打断(测试注入超时)
type ActorGroutine struct {
	state  ActorState
	cancel context.CancelFunc

	wg     xcommon.WaitGroup
	doneCh chan struct{}

	mu  sync.Mutex
	err error
}

func newActorGroutine(ctx context.Context, state ActorState, onExit func(*ActorGroutine)) *ActorGroutine {
	ctx, cancel := context.WithCancel(ctx)
	actor := &ActorGroutine{
		state:  state,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	actor.wg.Add(1)
	go actor.logicLoop(ctx, onExit)
	return actor
}

// 业务循环
func (actor *ActorGroutine) logicLoop(ctx context.Context, onExit func(*ActorGroutine)) {
	defer close(actor.doneCh)
	defer actor.wg.Done(ctx)

	err := actor.state.Run(ctx)
	if err != nil {
		xlog.Get(ctx).Warn("Actor exit with error.", zap.String("name", actor.state.Name()), zap.Error(err))
	}
	actor.mu.Lock()
	actor.err = err
	actor.mu.Unlock()

	if onExit != nil {
		onExit(actor)
	}
}

func (actor *ActorGroutine) Name() string {
	return actor.state.Name()
}

func (actor *ActorGroutine) Done() <-chan struct{} {
	return actor.doneCh
}

// Err 退出后的错误
func (actor *ActorGroutine) Err() error {
	actor.mu.Lock()
	defer actor.mu.Unlock()
	return actor.err
}

// Wait 等待退出, ctx取消时返回ctx.Err()
func (actor *ActorGroutine) Wait(ctx context.Context) error {
	select {
	case <-actor.doneCh:
		return actor.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 取消并等待退出
func (actor *ActorGroutine) Close(ctx context.Context) {
	actor.cancel()
	actor.wg.Wait()
}
