// Atlas: project context MCP server.
//
// A stdio MCP server that gives AI coding tools curated context
// documents for the projects in a workspace: list them, fetch them,
// and see which ones actually get used.
//
// Usage:
//
//	atlas serve    # Start MCP server (stdio transport)
//	atlas update   # Update to the latest version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Forge-Space/atlas/internal/config"
	atlasserver "github.com/Forge-Space/atlas/internal/server"
	"github.com/Forge-Space/atlas/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
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
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("atlas v%s\n", atlasserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	rootDir := fs.String("root", "", "workspace root that project paths resolve against (default: ATLAS_ROOT or the working directory)")
	manifest := fs.String("manifest", "", "YAML manifest replacing the built-in project table (default: ATLAS_MANIFEST)")
	dataDir := fs.String("data-dir", "", "directory for the activity database (default: ATLAS_DATA_DIR or ~/.atlas)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error (default: ATLAS_LOG_LEVEL or info)")
	if err := fs.Parse(args); err != nil {
		// The flag set already printed its usage text for -h.
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Resolve(config.Config{
		RootDir:      *rootDir,
		ManifestPath: *manifest,
		DataDir:      *dataDir,
		LogLevel:     *logLevel,
	})
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, cleanup, err := atlasserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	log.Info("atlas serving on stdio",
		zap.String("version", atlasserver.Version),
		zap.String("root", cfg.RootDir),
	)

	// Background version check. Writes to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// buildLogger creates the process logger. Everything goes to stderr:
// stdout belongs to the MCP transport and must stay clean.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zcfg.Build()
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. This runs in a goroutine during
// "serve" and is best-effort: network failures are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(atlasserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s -> v%s\n"+
				"     Run: atlas update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(atlasserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(atlasserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart atlas to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Atlas v%s, a project context MCP server

Usage:
  atlas serve [flags]   Start the MCP server (stdio transport)
  atlas update          Update to the latest version

Serve flags:
  --root       Workspace root that project paths resolve against
               (default: ATLAS_ROOT or the working directory)
  --manifest   YAML manifest replacing the built-in project table
               (default: ATLAS_MANIFEST)
  --data-dir   Directory for the activity database
               (default: ATLAS_DATA_DIR or ~/.atlas)
  --log-level  debug, info, warn, error
               (default: ATLAS_LOG_LEVEL or info)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "atlas": {
        "command": "atlas",
        "args": ["serve", "--root", "/path/to/workspace"]
      }
    }
  }

Learn more: https://github.com/Forge-Space/atlas
`, atlasserver.Version)
}
