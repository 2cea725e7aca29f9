// thoughtbox: multi-agent reasoning coordination MCP server
//
// Agents contribute hash-chained thoughts into shared sessions, the
// server extracts claims and flags conflicts between agents, and
// long-poll waits replace busy polling for coordination.
//
// Usage:
//
//	thoughtbox serve    # Start MCP server (stdio transport)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/server"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/updater"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("thoughtbox v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	dataDir := flags.String("data-dir", "", "override the data directory (default ~/.thoughtbox)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	s, cleanup, err := server.New(*dataDir)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return mcpserver.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if a newer release exists. Best-effort: network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(server.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `thoughtbox v%s — multi-agent reasoning coordination MCP server

Usage:
  thoughtbox serve [--data-dir DIR]   Start the MCP server (stdio transport)
  thoughtbox version                  Print the version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "thoughtbox": {
        "command": "thoughtbox",
        "args": ["serve"]
      }
    }
  }

Settings are read from DATA_DIR/config.yaml (default ~/.thoughtbox).
`, server.Version)
}
