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

package mars

import (
	"encoding/binary"
	"fmt"
)

// maxResyncWindow bounds how much garbage Stream retains while
// hunting for a plausible resync point, so a connection that never
// sends a valid frame again can't grow its buffer without limit.
const maxResyncWindow = 1 << 20

// Stream incrementally decodes a byte stream of Mars packages,
// buffering partial frames across Feed calls and resynchronising
// after corruption per the parse contract.
type Stream struct {
	buf  []byte
	opts ParseOptions
}

// NewStream returns a Stream ready to accept bytes.
func NewStream(opts ParseOptions) *Stream {
	return &Stream{opts: opts}
}

// Feed appends newly-received bytes to the stream's buffer.
func (s *Stream) Feed(data []byte) {
	s.buf = append(s.buf, data...)
}

// Buffered reports how many undecoded bytes the stream is holding.
func (s *Stream) Buffered() int { return len(s.buf) }

// Next returns the next decoded package, if the buffer holds one.
// ok is false when more bytes are needed. On a framing error, Next
// resynchronises by scanning forward for the next plausible version
// field, drops the garbage in front of it, and returns a single
// synthetic empty NOOP package so the peer sees a liveness signal
// instead of silence; the real frame that follows is returned by a
// subsequent call.
func (s *Stream) Next() (Package, bool, error) {
	pkg, consumed, outcome, err := Parse(s.buf, s.opts)
	switch outcome {
	case Complete:
		s.buf = s.buf[consumed:]
		return pkg, true, nil
	case NeedMore:
		return Package{}, false, nil
	default: // FramingErr
		if skipped := s.resync(); skipped > 0 {
			s.buf = s.buf[skipped:]
			return noopPackage(), true, fmt.Errorf("mars: resync after framing error: %w", err)
		}
		if len(s.buf) > maxResyncWindow {
			s.buf = s.buf[len(s.buf)-maxResyncWindow:]
		}
		return Package{}, false, nil
	}
}

// resync scans the buffer for the first offset i>0 at which the
// 4 bytes at i+4 look like a valid version field and the head_len at
// i is in range, and returns i (bytes to drop before that frame). A
// return of 0 means no plausible start was found yet.
func (s *Stream) resync() int {
	limit := len(s.buf)
	for i := 1; i+MinHeaderLen <= limit; i++ {
		headLen := int(binary.BigEndian.Uint32(s.buf[i : i+4]))
		version := int(binary.BigEndian.Uint32(s.buf[i+4 : i+8]))
		if version != ProtocolVersion || headLen < MinHeaderLen {
			continue
		}
		if s.opts.MaxFrameSize > 0 && headLen > s.opts.MaxFrameSize {
			continue
		}
		cmd := int(binary.BigEndian.Uint32(s.buf[i+8 : i+12]))
		if !validCmd(cmd) {
			continue
		}
		return i
	}
	return 0
}

func noopPackage() Package {
	return Package{
		Header: Header{HeadLen: MinHeaderLen, Version: ProtocolVersion, Cmd: CmdNoop, BodyLen: 0},
	}
}
