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

package silo_test

import (
	"fmt"
	"log"

	"github.com/silokv/silo"
	"github.com/silokv/silo/api/transport"
	"github.com/silokv/silo/transport/bind"
)

type pingService struct{}

func (pingService) HandleRPC(rpc *transport.RPC) {
	rpc.Response.Write(transport.ResponseHeader{Status: transport.CodeOK}.AppendTo(nil))
	rpc.Response.WriteString("pong")
}

func ExampleDispatcher() {
	dispatcher, err := silo.NewDispatcher(silo.Config{Name: "example"})
	if err != nil {
		log.Fatal(err)
	}
	defer dispatcher.Stop()

	if err := dispatcher.AddService(pingService{}, transport.PingService, 1); err != nil {
		log.Fatal(err)
	}

	tr := bind.New()
	tr.AddServer("mock:example", dispatcher)

	call, err := tr.Send("mock:example",
		transport.EncodeRequest(transport.PingService, transport.OpPing, nil))
	if err != nil {
		log.Fatal(err)
	}

	reply := call.Wait()
	fmt.Println(string(reply[transport.ResponseHeaderSize:]))
	// Output: pong
}
