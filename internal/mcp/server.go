// Package mcp exposes the journal to agents as read-only Model Context Protocol tools over stdio.
//
// Everything the server prints on stdout is JSON-RPC, so the process must keep
// its own logging (including the gorm logger) on stderr or silent.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/entities"
)

// ServerName is reported to clients during initialization.
const ServerName = "Journal MCP Server"

// EntryReader is the read side of the journal repository.
type EntryReader interface {
	GetEntryByDate(date entities.Date) (*entities.Entry, error)
	GetAllEntries() ([]entities.Entry, error)
	SearchEntries(term string) ([]entities.Entry, error)
	FilterByMood(kind entities.MoodKind) ([]entities.Entry, error)
	FilterByTag(name string) ([]entities.Entry, error)
	GetEntriesBetween(from, to entities.Date) ([]entities.Entry, error)
}

// StatsProvider computes the dashboard summary.
type StatsProvider interface {
	Summary(tagLimit int) analytics.Summary
}

type JournalServer struct {
	mcpServer *server.MCPServer
	tools     *tools
}

// NewJournalServer creates the MCP server and registers every journal tool.
func NewJournalServer(entries EntryReader, stats StatsProvider, version string) *JournalServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	t := &tools{entries: entries, stats: stats}
	t.register(s)

	return &JournalServer{mcpServer: s, tools: t}
}

// Start runs the stdio event loop until stdin closes.
func (s *JournalServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the underlying mcp-go server.
func (s *JournalServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
