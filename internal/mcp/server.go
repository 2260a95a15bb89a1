package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"entitysync/internal/workspace"
)

type Server struct {
	ws  *workspace.Workspace
	log *logrus.Entry
	mcp *sdk.Server
}

func NewServer(ws *workspace.Workspace, version string, log *logrus.Entry) *Server {
	s := &Server{
		ws:  ws,
		log: log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "entitysync",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
