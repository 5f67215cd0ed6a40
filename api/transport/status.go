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
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code is the status carried in the fixed structure at the front of every
// reply payload.
type Code uint32

// Statuses the dispatch core can produce. Handlers define further codes of
// their own above CodeInternal.
const (
	// CodeOK reports success.
	CodeOK Code = iota

	// CodeMessageTooShort rejects a request whose payload does not cover
	// the common header.
	CodeMessageTooShort

	// CodeServiceNotAvailable rejects a request whose service tag is out of
	// range or has no registered handler.
	CodeServiceNotAvailable

	// CodeUnimplementedRequest rejects an opcode a handler does not
	// understand.
	CodeUnimplementedRequest

	// CodeRetry asks the client to retry later.
	CodeRetry

	// CodeInternal reports a server-side failure.
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeMessageTooShort:
		return "message-too-short"
	case CodeServiceNotAvailable:
		return "service-not-available"
	case CodeUnimplementedRequest:
		return "unimplemented-request"
	case CodeRetry:
		return "retry"
	case CodeInternal:
		return "internal"
	default:
		return fmt.Sprintf("code(%d)", uint32(c))
	}
}

// ResponseHeader is the fixed structure at the front of every reply payload:
// a little-endian uint32 status code.
type ResponseHeader struct {
	Status Code
}

// ResponseHeaderSize is the encoded size of a ResponseHeader in bytes.
const ResponseHeaderSize = 4

// ParseResponseHeader decodes the status structure from the front of a reply
// payload.
func ParseResponseHeader(payload []byte) (ResponseHeader, error) {
	if len(payload) < ResponseHeaderSize {
		return ResponseHeader{}, fmt.Errorf("reply shorter than response header: %d bytes", len(payload))
	}
	return ResponseHeader{Status: Code(binary.LittleEndian.Uint32(payload[0:4]))}, nil
}

// AppendTo appends the encoded header to dst and returns the extended slice.
func (h ResponseHeader) AppendTo(dst []byte) []byte {
	var enc [ResponseHeaderSize]byte
	binary.LittleEndian.PutUint32(enc[:], uint32(h.Status))
	return append(dst, enc[:]...)
}

// PrepareErrorResponse discards whatever reply has accumulated in buf and
// replaces it with the fixed error structure carrying code. The dispatcher
// uses it to synthesize replies for requests no handler can see.
func PrepareErrorResponse(buf *bytes.Buffer, code Code) {
	buf.Reset()
	buf.Write(ResponseHeader{Status: code}.AppendTo(nil))
}
