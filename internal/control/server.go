// Copyright 2025 The kanata-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package control

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
)

// Server is a thin line-oriented TCP front end over the request/response
// helpers in request.go. It exists for integration tests and local
// debugging, not as a production control protocol: every line is one
// command ("layer <name>" or "status"); "layer" gets one response
// line, "status" gets the multi-line status table.
// The real wire protocol (framing, auth, multiple concurrent clients
// with push notifications) is out of scope per spec.md.
type Server struct {
	ln  net.Listener
	eng Poster
}

// Listen starts a Server bound to addr (e.g. "127.0.0.1:0"); pass port
// 0 to let the OS pick, then read Server.Addr() for the actual address.
func Listen(addr string, eng Poster) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control: listen %s: %w", addr, err)
	}
	return &Server{ln: ln, eng: eng}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

// Serve accepts connections until ctx is done or the listener closes.
// Each connection is handled on its own goroutine; Serve itself blocks.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		resp := s.dispatch(ctx, line)
		fmt.Fprintln(conn, resp)
	}
}

func (s *Server) dispatch(ctx context.Context, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "error: empty command"
	}
	switch fields[0] {
	case "layer":
		if len(fields) != 2 {
			return "error: usage: layer <name>"
		}
		if err := ChangeLayer(ctx, s.eng, fields[1]); err != nil {
			return "error: " + err.Error()
		}
		return "ok"
	case "status":
		info, err := CurrentLayerInfo(ctx, s.eng)
		if err != nil {
			return "error: " + err.Error()
		}
		return RenderLayerStatus(info)
	default:
		return "error: unknown command " + fields[0]
	}
}
