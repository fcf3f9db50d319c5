package cli

import (
	"fmt"

	"github.com/neilberkman/ragchat/cmd/ragchat/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for document Q&A",
	Long: `Start an MCP (Model Context Protocol) server over stdio that lets an
assistant create chat sessions, attach local PDFs and ask the RAG backend.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "ragchat": {
        "command": "ragchat",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol; logs go to the file only
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.close()

	if err := mcp.StartServer(e.client, e.logger); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
