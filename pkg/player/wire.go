package player

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// 字段编号
const (
	fieldName    protowire.Number = 1
	fieldMessage protowire.Number = 2
	fieldCount   protowire.Number = 3
)

// Marshal record => protobuf wire格式
func Marshal(r Record) []byte {
	b := make([]byte, 0, len(r.Name)+len(r.Message)+16)
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, r.Name)
	b = protowire.AppendTag(b, fieldMessage, protowire.BytesType)
	b = protowire.AppendString(b, r.Message)
	b = protowire.AppendTag(b, fieldCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(r.Count)))
	return b
}

// Unmarshal 未知字段跳过
func Unmarshal(b []byte) (Record, error) {
	var r Record
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Record{}, errors.Wrap(protowire.ParseError(n), "record tag")
		}
		b = b[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Record{}, errors.Wrap(protowire.ParseError(n), "record name")
			}
			r.Name, b = v, b[n:]
		case num == fieldMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Record{}, errors.Wrap(protowire.ParseError(n), "record message")
			}
			r.Message, b = v, b[n:]
		case num == fieldCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Record{}, errors.Wrap(protowire.ParseError(n), "record count")
			}
			if v > uint64(^uint32(0)>>1) {
				return Record{}, errors.Errorf("record count %d overflows int32", v)
			}
			r.Count, b = int32(v), b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Record{}, errors.Wrapf(protowire.ParseError(n), "record field %d", num)
			}
			b = b[n:]
		}
	}
	return r, nil
}
