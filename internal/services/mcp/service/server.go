// Package service runs the MCP server that exposes the parity harness
// surface — seeding, rolling, and trace introspection — as tools.
//
// The RNG core defines no locking discipline, so the server owns one
// session and serializes every tool call behind a mutex; that is the
// external synchronization the core's contract requires.
package service

import (
	"context"
	"sync"

	"github.com/louisbranch/parityroll/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "parityroll"
	serverVersion = "0.1.0"
)

// Server owns the MCP server and the single session its tools drive.
type Server struct {
	mu        sync.Mutex
	session   *session.Session
	mcpServer *mcp.Server
}

// New builds a server whose session is seeded with the given value.
func New(seed uint64) *Server {
	s := &Server{
		session: session.New(seed),
	}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// withSession runs fn with exclusive access to the session.
func (s *Server) withSession(fn func(*session.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
}
