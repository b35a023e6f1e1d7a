package player

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Greeting 发起方的第一条消息
const Greeting = "[Hello!]"

// Record 一次发送的快照, 发送后不可修改
type Record struct {
	Name    string
	Message string
	Count   int32 // 发送方发送时的计数
}

func (r Record) String() string {
	return fmt.Sprintf("%s#%d %q", r.Name, r.Count, r.Message)
}

// Player 会话中的一方.
// Count只增不减, 可跨协程读; Message仅由所属loop修改.
type Player struct {
	name  string
	count *atomic.Int32

	mu      sync.RWMutex
	message string
}

func New(name string) *Player {
	return &Player{name: name, count: atomic.NewInt32(0)}
}

func (p *Player) Name() string { return p.name }

func (p *Player) Count() int32 { return p.count.Load() }

func (p *Player) Message() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.message
}

func (p *Player) setMessage(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

// Initialize 设置问候语, 计数不变
func (p *Player) Initialize() {
	p.setMessage(Greeting)
}

// Open 发起方的首次发送, 计为一次发送
func (p *Player) Open() Record {
	p.Initialize()
	p.count.Inc()
	return p.Snapshot()
}

// RespondTo 追加 " [reply<n>]" 生成回复, n为自增前的计数.
// 非幂等: 每次调用计数加一.
func (p *Player) RespondTo(peer Record) Record {
	reply := fmt.Sprintf("%s [reply%d]", peer.Message, p.count.Load())
	p.count.Inc()
	p.setMessage(reply)
	return p.Snapshot()
}

func (p *Player) Snapshot() Record {
	return Record{Name: p.name, Message: p.Message(), Count: p.count.Load()}
}
