package xactor

import (
	"context"
	"fmt"
	"sync"
)

// Group 一组协作的actor, 任一actor出错时取消其余actor
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	actors map[string]*ActorGroutine
	order  []string
	errOne sync.Once
	err    error
}

func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{
		ctx:    ctx,
		cancel: cancel,
		actors: make(map[string]*ActorGroutine),
	}
}

// Spawn 注册并启动actor
func (g *Group) Spawn(state ActorState) (*ActorGroutine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.actors[state.Name()]; ok {
		return nil, fmt.Errorf("actor %v is repeated", state.Name())
	}
	actor := newActorGroutine(g.ctx, state, g.onExit)
	g.actors[state.Name()] = actor
	g.order = append(g.order, state.Name())
	return actor, nil
}

func (g *Group) onExit(actor *ActorGroutine) {
	if err := actor.Err(); err != nil {
		g.errOne.Do(func() {
			g.err = fmt.Errorf("actor %v: %w", actor.Name(), err)
			g.cancel()
		})
	}
}

func (g *Group) snapshot() []*ActorGroutine {
	g.mu.RLock()
	defer g.mu.RUnlock()
	as := make([]*ActorGroutine, 0, len(g.order))
	for _, name := range g.order {
		as = append(as, g.actors[name])
	}
	return as
}

// Wait 等待全部actor退出, 返回第一个错误.
// ctx取消时取消全部actor并返回ctx.Err()
func (g *Group) Wait(ctx context.Context) error {
	for _, actor := range g.snapshot() {
		select {
		case <-actor.Done():
		case <-ctx.Done():
			g.CloseAll(context.Background())
			return ctx.Err()
		}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}

func (g *Group) CloseAll(ctx context.Context) {
	g.cancel()
	for _, actor := range g.snapshot() {
		actor.Close(ctx)
	}
}
