// Package adminmcp exposes read-only node introspection — health,
// registered accounts, cached exchange rates — as MCP tools, using the
// teacher's own MCP stack (github.com/mark3labs/mcp-go) in the same
// shape its examples/mcp/main.go wires tools up in, minus the payment
// gating: everything here is read-only operator tooling, not a metered
// resource.
package adminmcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/interledger-go/ilp-node/internal/exchangerate"
	"github.com/interledger-go/ilp-node/internal/store"
)

// Server wraps an MCP server exposing this node's introspection tools.
type Server struct {
	mcp       *server.MCPServer
	accounts  *store.Store
	rates     *exchangerate.Poller
	startedAt time.Time
}

// New builds the admin MCP server for a single node, backed by accounts
// and rates.
func New(nodeID, version string, accounts *store.Store, rates *exchangerate.Poller, startedAt time.Time) *Server {
	s := &Server{
		mcp:       server.NewMCPServer(nodeID, version),
		accounts:  accounts,
		rates:     rates,
		startedAt: startedAt,
	}

	s.mcp.AddTool(
		mcp.NewTool("health", mcp.WithDescription("Report node uptime and basic status")),
		s.handleHealth,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_accounts", mcp.WithDescription("List every account registered with this node")),
		s.handleListAccounts,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_account",
			mcp.WithDescription("Look up a single account by its ILP address"),
			mcp.WithString("ilp_address", mcp.Required(), mcp.Description("ILP address of the account to look up")),
		),
		s.handleGetAccount,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_rate",
			mcp.WithDescription("Report the most recently polled exchange rate for a currency pair"),
			mcp.WithString("base", mcp.Required(), mcp.Description("Base currency code")),
			mcp.WithString("quote", mcp.Required(), mcp.Description("Quote currency code")),
		),
		s.handleGetRate,
	)

	return s
}

// ServeStdio runs the MCP server over stdio until ctx is cancelled,
// the transport an operator's local MCP-speaking tooling expects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, nil, nil)
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uptime := time.Since(s.startedAt).Round(time.Second)
	return mcp.NewToolResultText(fmt.Sprintf("status: ok, uptime: %s", uptime)), nil
}

func (s *Server) handleListAccounts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("listing accounts", err), nil
	}
	if len(accounts) == 0 {
		return mcp.NewToolResultText("no accounts registered"), nil
	}

	text := ""
	for _, a := range accounts {
		text += fmt.Sprintf("%s\tkind=%s\tidentity=%s\tasset=%s/%d\n",
			a.ILPAddress, a.Kind, a.Identity(), a.AssetCode, a.AssetScale)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleGetAccount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ilpAddress, _ := args["ilp_address"].(string)
	if ilpAddress == "" {
		return mcp.NewToolResultError("ilp_address is required"), nil
	}

	account, err := s.accounts.Get(ctx, ilpAddress)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("looking up account", err), nil
	}

	text := fmt.Sprintf("%s\tkind=%s\tidentity=%s\tasset=%s/%d",
		account.ILPAddress, account.Kind, account.Identity(), account.AssetCode, account.AssetScale)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleGetRate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	base, _ := args["base"].(string)
	quote, _ := args["quote"].(string)
	if base == "" || quote == "" {
		return mcp.NewToolResultError("base and quote are required"), nil
	}

	rate, ok := s.rates.Rate(base, quote)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no rate cached yet for %s/%s", base, quote)), nil
	}

	text := fmt.Sprintf("%s/%s = %f (fetched %s)", rate.Base, rate.Quote, rate.Value, rate.FetchedAt.Format(time.RFC3339))
	return mcp.NewToolResultText(text), nil
}
