// Copyright (c) 2025 The silo Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ServiceType identifies a registered handler family. It is carried in the
// common header of every request.
type ServiceType uint16

// The services a silo server may host.
const (
	MasterService ServiceType = iota
	BackupService
	CoordinatorService
	PingService
	MembershipService

	// MaxService is the largest valid service tag; requests carrying a
	// larger tag are rejected before reaching any handler.
	MaxService = MembershipService
)

func (s ServiceType) String() string {
	switch s {
	case MasterService:
		return "master"
	case BackupService:
		return "backup"
	case CoordinatorService:
		return "coordinator"
	case PingService:
		return "ping"
	case MembershipService:
		return "membership"
	default:
		return fmt.Sprintf("service(%d)", uint16(s))
	}
}

// Opcode selects an operation within a service. Its meaning is
// handler-specific; the dispatcher never interprets it.
type Opcode uint16

// Operations understood by the storage services.
const (
	OpPing Opcode = iota
	OpRead
	OpWrite
	OpInsert
	OpRemove
	OpCreateTable
	OpOpenTable
	OpDropTable
)

func (o Opcode) String() string {
	switch o {
	case OpPing:
		return "ping"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpCreateTable:
		return "createTable"
	case OpOpenTable:
		return "openTable"
	case OpDropTable:
		return "dropTable"
	default:
		return fmt.Sprintf("opcode(%d)", uint16(o))
	}
}

// RequestHeader is the common prefix of every request payload: the service
// tag followed by the opcode, both little-endian uint16.
type RequestHeader struct {
	Service ServiceType
	Opcode  Opcode
}

// RequestHeaderSize is the encoded size of a RequestHeader in bytes.
const RequestHeaderSize = 4

// ErrMessageTooShort reports a request payload shorter than the common
// header.
var ErrMessageTooShort = errors.New("request shorter than common header")

// ParseRequestHeader decodes the common header from the front of a request
// payload.
func ParseRequestHeader(payload []byte) (RequestHeader, error) {
	if len(payload) < RequestHeaderSize {
		return RequestHeader{}, ErrMessageTooShort
	}
	return RequestHeader{
		Service: ServiceType(binary.LittleEndian.Uint16(payload[0:2])),
		Opcode:  Opcode(binary.LittleEndian.Uint16(payload[2:4])),
	}, nil
}

// AppendTo appends the encoded header to dst and returns the extended slice.
func (h RequestHeader) AppendTo(dst []byte) []byte {
	var enc [RequestHeaderSize]byte
	binary.LittleEndian.PutUint16(enc[0:2], uint16(h.Service))
	binary.LittleEndian.PutUint16(enc[2:4], uint16(h.Opcode))
	return append(dst, enc[:]...)
}

// EncodeRequest builds a request payload: the common header followed by the
// operation-specific body.
func EncodeRequest(service ServiceType, opcode Opcode, body []byte) []byte {
	payload := RequestHeader{Service: service, Opcode: opcode}.AppendTo(
		make([]byte, 0, RequestHeaderSize+len(body)))
	return append(payload, body...)
}
