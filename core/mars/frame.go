// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

// Package mars implements the station's framed wire protocol: a
// fixed big-endian header (head_len/version/cmd/seq/body_len/options)
// followed by an opaque body, plus the resync logic that lets a
// connection recover after a corrupted frame instead of hanging.
package mars

import (
	"encoding/binary"
	"fmt"
)

// MinHeaderLen is the smallest legal value of head_len: the five
// fixed 4-byte fields with no options.
const MinHeaderLen = 20

// ProtocolVersion is the only version value this codec accepts.
const ProtocolVersion = 200

// Command identifiers. Anything else is a framing error.
const (
	CmdSendMsg     = 3
	CmdNoop        = 6
	CmdPushMessage = 10001
)

// Reserved liveness bodies. These are swallowed by the connection
// layer and never reach the dispatcher.
var (
	BodyPing = []byte("PING")
	BodyPong = []byte("PONG")
	BodyNoop = []byte("NOOP")
)

// Header is the fixed portion of a Mars package.
type Header struct {
	HeadLen int32
	Version int32
	Cmd     int32
	Seq     int32
	BodyLen int32
	Options []byte
}

// Package is one decoded Mars frame.
type Package struct {
	Header Header
	Body   []byte
}

// ParseOptions bounds how large a single frame is allowed to claim to
// be, so a corrupted or hostile head_len/body_len can't make the
// codec attempt a multi-gigabyte allocation before rejecting it.
type ParseOptions struct {
	MaxFrameSize int
}

// DefaultParseOptions caps a single frame at 16 MiB.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxFrameSize: 16 << 20}
}

// Outcome classifies a single Parse attempt per the parse contract:
// a complete package, "need more bytes", or a framing error.
type Outcome int

const (
	Complete Outcome = iota
	NeedMore
	FramingErr
)

// Encode renders cmd/seq/body as a complete Mars package with no
// options.
func Encode(cmd, seq int32, body []byte) []byte {
	head := make([]byte, MinHeaderLen)
	binary.BigEndian.PutUint32(head[0:4], uint32(MinHeaderLen))
	binary.BigEndian.PutUint32(head[4:8], uint32(ProtocolVersion))
	binary.BigEndian.PutUint32(head[8:12], uint32(cmd))
	binary.BigEndian.PutUint32(head[12:16], uint32(seq))
	binary.BigEndian.PutUint32(head[16:20], uint32(len(body)))
	return append(head, body...)
}

// Parse attempts to decode one package from the front of buf. It
// never mutates buf. The returned int is the number of bytes to
// advance past on Complete; it is meaningless otherwise.
func Parse(buf []byte, opts ParseOptions) (Package, int, Outcome, error) {
	if len(buf) < 4 {
		return Package{}, 0, NeedMore, nil
	}
	headLen := int(binary.BigEndian.Uint32(buf[0:4]))
	if headLen < MinHeaderLen {
		return Package{}, 0, FramingErr, fmt.Errorf("mars: head_len %d below minimum %d", headLen, MinHeaderLen)
	}
	if opts.MaxFrameSize > 0 && headLen > opts.MaxFrameSize {
		return Package{}, 0, FramingErr, fmt.Errorf("mars: head_len %d exceeds max frame size %d", headLen, opts.MaxFrameSize)
	}
	if len(buf) < headLen {
		return Package{}, 0, NeedMore, nil
	}
	version := int(binary.BigEndian.Uint32(buf[4:8]))
	if version != ProtocolVersion {
		return Package{}, 0, FramingErr, fmt.Errorf("mars: unsupported version %d", version)
	}
	cmd := int(binary.BigEndian.Uint32(buf[8:12]))
	if !validCmd(cmd) {
		return Package{}, 0, FramingErr, fmt.Errorf("mars: unknown cmd %d", cmd)
	}
	seq := int(binary.BigEndian.Uint32(buf[12:16]))
	bodyLen := int(binary.BigEndian.Uint32(buf[16:20]))
	if opts.MaxFrameSize > 0 && bodyLen > opts.MaxFrameSize {
		return Package{}, 0, FramingErr, fmt.Errorf("mars: body_len %d exceeds max frame size %d", bodyLen, opts.MaxFrameSize)
	}
	total := headLen + bodyLen
	if len(buf) < total {
		return Package{}, 0, NeedMore, nil
	}
	pkg := Package{
		Header: Header{
			HeadLen: int32(headLen),
			Version: int32(version),
			Cmd:     int32(cmd),
			Seq:     int32(seq),
			BodyLen: int32(bodyLen),
			Options: append([]byte(nil), buf[20:headLen]...),
		},
		Body: append([]byte(nil), buf[headLen:total]...),
	}
	return pkg, total, Complete, nil
}

func validCmd(cmd int) bool {
	switch cmd {
	case CmdSendMsg, CmdNoop, CmdPushMessage:
		return true
	default:
		return false
	}
}
