// Package mcp exposes the bounty platform as MCP tools: one tool per
// bounty operation plus a raw tx tool, all backed by the command router
// and the transaction pipeline.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/ledger"
	"github.com/Profay/Intercom-bounty/router"
	"github.com/Profay/Intercom-bounty/wallet"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the mcp-go server with the bounty pipeline.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *ledger.Pipeline
	driver    *bounty.Driver
	gateway   ledger.Gateway
	view      bounty.View
	wallet    wallet.Wallet
	address   func() string
}

// NewServer creates the MCP server and registers every tool.
func NewServer(pipeline *ledger.Pipeline, driver *bounty.Driver, gateway ledger.Gateway, view bounty.View, w wallet.Wallet, address func() string) *Server {
	mcpServer := server.NewMCPServer(
		"Intercom Bounty",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		pipeline:  pipeline,
		driver:    driver,
		gateway:   gateway,
		view:      view,
		wallet:    w,
		address:   address,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server for transport setup.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

func (s *Server) registerTools() {
	// Write operations
	s.registerPostBountyTool()
	s.registerClaimBountyTool()
	s.registerSubmitWorkTool()
	s.registerApproveBountyTool()
	s.registerRejectBountyTool()
	s.registerCancelBountyTool()

	// Read operations
	s.registerGetBountyTool()
	s.registerListBountiesTool()
	s.registerMyBountiesTool()
	s.registerMyWorkTool()
	s.registerStatsTool()

	// Platform tools
	s.registerTxTool()
	s.registerChatTool()
	s.registerDoctorTool()
	s.registerWalletInfoTool()
}

// execute routes a command through the pipeline. On an accepted broadcast
// the operation is applied locally: this peer is the subnet's writable
// writer in the single-writer deployment, so gateway acceptance is
// admission.
func (s *Server) execute(ctx context.Context, command string, sim bool) (string, error) {
	intent, err := router.Map(command)
	if err != nil {
		return "", err
	}
	res, err := s.pipeline.Submit(ctx, intent, sim, nil)
	if err != nil {
		return "", err
	}
	if res.Simulated {
		return res.Output, nil
	}
	entry := bounty.Entry{Address: s.address(), Type: intent.Type, Value: intent.Value}
	if err := s.driver.Process(ctx, entry); err != nil {
		return "", err
	}
	return fmt.Sprintf("admitted %s (tx %s)", intent.Type, res.Payload.Txo.Tx), nil
}

func (s *Server) registerPostBountyTool() {
	tool := mcp.NewTool("post_bounty",
		mcp.WithDescription("Post a new bounty with an escrowed reward"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Bounty title (1-200 chars)")),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the work entails (1-2000 chars)")),
		mcp.WithString("reward", mcp.Required(), mcp.Description("Reward amount as a decimal integer string")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		description, err := request.RequireString("description")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reward, err := request.RequireString("reward")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cmd, _ := json.Marshal(map[string]string{
			"op": "post_bounty", "title": title, "description": description, "reward": reward,
		})
		out, err := s.execute(ctx, string(cmd), false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to post bounty: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerClaimBountyTool() {
	tool := mcp.NewTool("claim_bounty",
		mcp.WithDescription("Claim an open bounty for work"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of the bounty to claim")),
	)

	s.mcpServer.AddTool(tool, s.idCommandHandler("claim_bounty", "Failed to claim bounty"))
}

func (s *Server) registerSubmitWorkTool() {
	tool := mcp.NewTool("submit_work",
		mcp.WithDescription("Submit proof of completed work for a claimed bounty"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of the claimed bounty")),
		mcp.WithString("proof", mcp.Required(), mcp.Description("Evidence URL or description (1-5000 chars)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bountyID, err := request.RequireString("bounty_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		proof, err := request.RequireString("proof")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cmd, _ := json.Marshal(map[string]string{
			"op": "submit_work", "bountyId": bountyID, "proof": proof,
		})
		out, err := s.execute(ctx, string(cmd), false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to submit work: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerApproveBountyTool() {
	tool := mcp.NewTool("approve_bounty",
		mcp.WithDescription("Approve submitted work and release the reward"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of the bounty to approve")),
	)

	s.mcpServer.AddTool(tool, s.idCommandHandler("approve_bounty", "Failed to approve bounty"))
}

func (s *Server) registerRejectBountyTool() {
	tool := mcp.NewTool("reject_bounty",
		mcp.WithDescription("Reject submitted work; the worker keeps the claim for rework"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of the bounty")),
		mcp.WithString("reason", mcp.Required(), mcp.Description("Why the work was rejected (1-1000 chars)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bountyID, err := request.RequireString("bounty_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reason, err := request.RequireString("reason")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cmd, _ := json.Marshal(map[string]string{
			"op": "reject_bounty", "bountyId": bountyID, "reason": reason,
		})
		out, err := s.execute(ctx, string(cmd), false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to reject bounty: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerCancelBountyTool() {
	tool := mcp.NewTool("cancel_bounty",
		mcp.WithDescription("Cancel an unclaimed bounty"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of the open bounty to cancel")),
	)

	s.mcpServer.AddTool(tool, s.idCommandHandler("cancel_bounty", "Failed to cancel bounty"))
}

func (s *Server) registerGetBountyTool() {
	tool := mcp.NewTool("get_bounty",
		mcp.WithDescription("Get details of a specific bounty"),
		mcp.WithString("bounty_id", mcp.Required(), mcp.Description("ID of bounty to retrieve")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bountyID, err := request.RequireString("bounty_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cmd, _ := json.Marshal(map[string]string{"op": "get_bounty", "bountyId": bountyID})
		out, err := s.execute(ctx, string(cmd), true)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get bounty: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerListBountiesTool() {
	tool := mcp.NewTool("list_bounties",
		mcp.WithDescription("List all bounties on the platform"),
	)
	s.mcpServer.AddTool(tool, s.keywordHandler("list_bounties", "Failed to list bounties"))
}

func (s *Server) registerMyBountiesTool() {
	tool := mcp.NewTool("my_bounties",
		mcp.WithDescription("List bounties posted by this peer"),
	)
	s.mcpServer.AddTool(tool, s.keywordHandler("my_bounties", "Failed to list posted bounties"))
}

func (s *Server) registerMyWorkTool() {
	tool := mcp.NewTool("my_work",
		mcp.WithDescription("List bounties claimed by this peer"),
	)
	s.mcpServer.AddTool(tool, s.keywordHandler("my_work", "Failed to list claimed bounties"))
}

func (s *Server) registerStatsTool() {
	tool := mcp.NewTool("bounty_stats",
		mcp.WithDescription("Platform statistics: bounty counts per status"),
	)
	s.mcpServer.AddTool(tool, s.keywordHandler("stats", "Failed to get stats"))
}

func (s *Server) registerTxTool() {
	tool := mcp.NewTool("tx",
		mcp.WithDescription("Run a raw bounty command: a keyword (list_bounties, my_bounties, my_work, stats) or a JSON object with an op field"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command string")),
		mcp.WithBoolean("sim", mcp.Description("Force simulation (no broadcast)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		command, err := request.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		simFlag := false
		if v, ok := request.GetArguments()["sim"].(bool); ok {
			simFlag = v
		}

		out, err := s.execute(ctx, command, simFlag)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tx failed: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerChatTool() {
	tool := mcp.NewTool("chat",
		mcp.WithDescription("Post a chat message to the subnet log"),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := request.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entry := bounty.Entry{Type: "msg", Msg: message, Address: s.address()}
		if err := s.driver.Process(ctx, entry); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to post message: %v", err)), nil
		}
		return mcp.NewToolResultText("message recorded"), nil
	})
}

func (s *Server) registerDoctorTool() {
	tool := mcp.NewTool("doctor",
		mcp.WithDescription("Report validator connectivity, tx-enabled flag, and bootstrap identifiers"),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		txEnabled := "default(true)"
		if raw, err := s.view.Get(ctx, bounty.KeyTxEnabled); err == nil && raw != nil {
			txEnabled = string(raw)
		}
		report := map[string]any{
			"validatorsConnected": s.gateway.ConnectedValidatorCount(),
			"txEnabled":           txEnabled,
			"networkId":           s.gateway.NetworkID(),
			"bootstrap":           s.gateway.BootstrapHex(),
			"walletReady":         s.wallet.Ready(),
			"address":             s.address(),
		}
		raw, _ := json.MarshalIndent(report, "", "  ")
		out := string(raw)
		if s.gateway.ConnectedValidatorCount() <= 0 {
			out += "\nNo validators connected: write TX may fail or drop."
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerWalletInfoTool() {
	tool := mcp.NewTool("wallet_info",
		mcp.WithDescription("This peer's address, public key, and a receive QR code"),
		mcp.WithString("amount", mcp.Description("Optional amount to embed in the QR")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount := ""
		if v, ok := request.GetArguments()["amount"].(string); ok {
			amount = v
		}
		addr := s.address()
		if addr == "" {
			return mcp.NewToolResultError(wallet.ErrNotInitialized.Error()), nil
		}
		qr, err := wallet.ReceiveQR(addr, amount)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to render QR: %v", err)), nil
		}
		info := map[string]any{
			"address":   addr,
			"publicKey": s.wallet.PublicKeyHex(),
			"qrPngB64":  base64.StdEncoding.EncodeToString(qr),
		}
		raw, _ := json.MarshalIndent(info, "", "  ")
		return mcp.NewToolResultText(string(raw)), nil
	})
}

// idCommandHandler builds a handler for tools whose payload is just a
// bounty_id.
func (s *Server) idCommandHandler(op, failPrefix string) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bountyID, err := request.RequireString("bounty_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cmd, _ := json.Marshal(map[string]string{"op": op, "bountyId": bountyID})
		out, err := s.execute(ctx, string(cmd), false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", failPrefix, err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// keywordHandler builds a handler for the read-only keyword commands.
func (s *Server) keywordHandler(keyword, failPrefix string) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.execute(ctx, keyword, true)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", failPrefix, err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
