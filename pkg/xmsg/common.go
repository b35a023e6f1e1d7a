package xmsg

import "errors"

// 协议号
const (
	CmdRecord int32 = 1 // player快照
	CmdClose  int32 = 2 // 结束, 无payload
)

// 单个数据包payload上限
const MaxPayload = 1 << 20

var (
	ErrPayloadTooLarge = errors.New("xmsg: payload too large")
	ErrBadLength       = errors.New("xmsg: negative payload length")
	ErrShortMsg        = errors.New("xmsg: msg shorter than header")
)

// 请求头包
type Header struct {
	Seq  int32 // 发送方计数
	Cmd  int32 // 协议号
	Flag int32 // 特殊标识
	Len  int32 // 数据长度
}
