// File: protocol/frame.go
// Package protocol implements the inbound frame decoder.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ReadFrame decodes exactly one frame from a byte stream, enforcing the
// payload size limit and the single-frame (FIN=1, no continuation) rule.

package protocol

import (
	"encoding/binary"
	"io"

	"github.com/momentics/hioload-wsclient/api"
)

// WSFrame represents a decoded WebSocket frame.
type WSFrame struct {
	IsFinal    bool  // FIN bit
	Opcode     byte  // Operation code
	Masked     bool  // Whether the frame arrived masked
	PayloadLen int64 // Actual payload length
	MaskKey    [4]byte
	Payload    []byte // Unmasked payload
}

// ReadFrame reads one complete frame from r. Short reads terminate with the
// underlying I/O error; wire violations return *api.WrongResponseError.
//
// Validation order matters for error attribution: reserved bits first, then
// length bounds, then the fragmentation rule, then the payload itself.
func ReadFrame(r io.Reader) (*WSFrame, error) {
	first, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if first&ReservedBits != 0 {
		return nil, api.NewWrongResponse("server expected unsupported negotiation")
	}
	isFin := first&FinBit != 0
	opcode := first & OpcodeBits

	second, err := readByte(r)
	if err != nil {
		return nil, err
	}
	isMasked := second&MaskBit != 0
	payloadLen := int64(second & LenBits)

	switch payloadLen {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = int64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = int64(binary.BigEndian.Uint64(ext[:]))
	}

	var maskKey [4]byte
	if isMasked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return nil, err
		}
	}

	// A 64-bit length with the top bit set decodes negative here.
	if payloadLen < 0 || payloadLen > MaxFramePayload {
		return nil, api.NewWrongResponse("too large payload")
	}
	if !isFin || opcode == OpcodeContinuation {
		return nil, api.NewWrongResponse("fragmented frames not supported")
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if isMasked {
		MaskBytes(payload, maskKey[:])
	}

	return &WSFrame{
		IsFinal:    isFin,
		Opcode:     opcode,
		Masked:     isMasked,
		PayloadLen: payloadLen,
		MaskKey:    maskKey,
		Payload:    payload,
	}, nil
}

// EncodeHeader serializes a client frame header into dst and returns the
// number of bytes written. dst must hold at least MaxFrameHeaderLen bytes.
// The masking key itself is written by the caller after the header.
func EncodeHeader(dst []byte, opcode byte, payloadLen int, masked bool) int {
	dst[0] = FinBit | (opcode & OpcodeBits)

	var maskBit byte
	if masked {
		maskBit = MaskBit
	}

	offset := 1
	switch {
	case payloadLen < 126:
		dst[offset] = byte(payloadLen) | maskBit
		offset++
	case payloadLen <= 0xFFFF:
		dst[offset] = 126 | maskBit
		offset++
		binary.BigEndian.PutUint16(dst[offset:], uint16(payloadLen))
		offset += 2
	default:
		dst[offset] = 127 | maskBit
		offset++
		binary.BigEndian.PutUint64(dst[offset:], uint64(payloadLen))
		offset += 8
	}
	return offset
}

// MaskBytes applies the XOR masking transform in place. The transform is its
// own inverse. key must be 4 bytes long.
func MaskBytes(buf []byte, key []byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
