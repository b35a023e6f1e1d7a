package xmsg

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var HeaderSizeof = binary.Size(Header{})

type PackMsgArgs struct {
	Seq     int32
	Cmd     int32
	Flag    int32
	Payload []byte
}

// 打包数据 header + payload
func PackMsg(arg PackMsgArgs) ([]byte, error) {
	if len(arg.Payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	header := &Header{Seq: arg.Seq, Cmd: arg.Cmd, Flag: arg.Flag, Len: int32(len(arg.Payload))}
	ioWrite := bytes.NewBuffer(make([]byte, 0, HeaderSizeof+len(arg.Payload)))
	if err := binary.Write(ioWrite, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	ioWrite.Write(arg.Payload)
	return ioWrite.Bytes(), nil
}

func checkHeader(header *Header) error {
	if header.Len < 0 {
		return ErrBadLength
	}
	if header.Len > MaxPayload {
		return ErrPayloadTooLarge
	}
	return nil
}

// ParseMsg 解析缓存中的第一个数据包.
// 数据不足时返回 n == 0, 否则返回已消费长度
func ParseMsg(msg []byte) (header *Header, payload []byte, n int, err error) {
	if len(msg) < HeaderSizeof {
		return nil, nil, 0, nil
	}
	header = &Header{}
	if err := binary.Read(bytes.NewReader(msg[0:HeaderSizeof]), binary.LittleEndian, header); err != nil {
		return nil, nil, 0, err
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, 0, err
	}
	if len(msg) < HeaderSizeof+int(header.Len) {
		return nil, nil, 0, nil
	}
	payload = msg[HeaderSizeof : HeaderSizeof+int(header.Len)]
	return header, payload, HeaderSizeof + int(header.Len), nil
}

// UnpackMsg 解析一个完整数据包(websocket等自带分包的传输)
func UnpackMsg(msg []byte) (*Header, []byte, error) {
	header, payload, n, err := ParseMsg(msg)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, ErrShortMsg
	}
	return header, payload, nil
}

// ReadMsg 从流中读取一个完整数据包.
// 包边界前流结束返回io.EOF, 包中途结束返回io.ErrUnexpectedEOF
func ReadMsg(r io.Reader) (*Header, []byte, error) {
	head := make([]byte, HeaderSizeof)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, nil, err
	}
	header := &Header{}
	if err := binary.Read(bytes.NewReader(head), binary.LittleEndian, header); err != nil {
		return nil, nil, err
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}
	payload := make([]byte, header.Len)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, errors.Wrap(err, "read payload")
	}
	return header, payload, nil
}

// WriteMsg 打包并整包写入
func WriteMsg(w io.Writer, arg PackMsgArgs) error {
	msg, err := PackMsg(arg)
	if err != nil {
		return err
	}
	for len(msg) > 0 {
		n, err := w.Write(msg)
		if err != nil {
			return err
		}
		msg = msg[n:]
	}
	return nil
}
