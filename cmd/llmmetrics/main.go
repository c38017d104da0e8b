// Command llmmetrics runs a two-turn conversation with an agent that has
// bash, file editing and MCP fetch tools, then prints the collected
// messages and the final model metrics.
//
// Usage:
//
//	LLM_MODEL=ollama/devstral-64k go run ./cmd/llmmetrics
//
// Set AGUI_TRACE to a file path to record the run as an AG-UI SSE stream.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/agent"
	"github.com/spetersoncode/convo/agui"
	"github.com/spetersoncode/convo/client"
	"github.com/spetersoncode/convo/conversation"
	"github.com/spetersoncode/convo/mcp"
	"github.com/spetersoncode/convo/metrics"
	"github.com/spetersoncode/convo/tool"
)

var turns = []string{
	"Read https://github.com/All-Hands-AI/OpenHands and write 3 facts " +
		"about the project into FACTS.txt.",
	"Great! Now delete that file.",
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.slogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := conversation.NewMessageLog()
	snap, err := run(ctx, cfg, logger, log)
	printSummary(log)
	if err != nil {
		logger.Error("conversation failed", "error", err)
		os.Exit(1)
	}

	dump, err := json.Marshal(snap.ModelDump())
	if err != nil {
		logger.Error("marshal metrics", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Final LLM metrics with details: %s\n", dump)
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger, log *conversation.MessageLog) (*metrics.Snapshot, error) {
	llm, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, err
	}

	registry, closeTools, err := buildTools(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeTools()

	// Bash enforces its own two minute limit; MCP fetches can be slower than
	// the default handler timeout.
	a := agent.New(llm, registry, agent.WithHandlerTimeout(5*time.Minute))

	callbacks := []conversation.Callback{conversation.NewMetricsCallback(log, logger)}
	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		defer f.Close()
		callbacks = append(callbacks, agui.NewCallback(f, "", logger))
	}

	convOpts := []conversation.Option{
		conversation.WithCallbacks(callbacks...),
		conversation.WithLogger(logger),
	}
	adapter, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()
	if adapter != nil {
		convOpts = append(convOpts, conversation.WithPersistence(adapter, cfg.ConversationID))
	}

	conv, err := conversation.New(a, convOpts...)
	if err != nil {
		return nil, err
	}
	logger.Info("conversation ready", "id", conv.ID(), "restored_events", len(conv.Events()))

	for _, text := range turns {
		if err := conv.SendMessage(ai.NewUserMessage(ai.TextContent(text))); err != nil {
			return nil, err
		}
		if err := conv.Run(ctx); err != nil {
			return nil, err
		}
	}
	return a.Metrics()
}

// buildTools registers the built-in tools followed by every tool the MCP
// servers advertise. The returned func closes the MCP sessions.
func buildTools(ctx context.Context, cfg *Config, logger *slog.Logger) (*tool.Registry, func(), error) {
	bash, err := tool.NewBashTool(cfg.WorkDir)
	if err != nil {
		return nil, nil, err
	}
	base := []tool.Registration{bash, tool.NewFileEditorTool(tool.WithBasePath(cfg.WorkDir))}

	mcpCfg, err := cfg.MCPConfig()
	if err != nil {
		return nil, nil, err
	}
	toolset, err := mcp.CreateTools(ctx, mcpCfg, cfg.MCPTimeout, mcp.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	closeTools := func() {
		if err := toolset.Close(); err != nil {
			logger.Warn("close MCP sessions", "error", err)
		}
	}

	regs, err := tool.Assemble(base, toolset.Registrations())
	if err != nil {
		closeTools()
		return nil, nil, err
	}
	logger.Info(fmt.Sprintf("Added %d MCP tools", toolset.Len()), "tools", len(regs))
	return tool.NewRegistry(regs...), closeTools, nil
}

func printSummary(log *conversation.MessageLog) {
	fmt.Println(strings.Repeat("=", 100))
	fmt.Println("Conversation finished. Got the following LLM messages:")
	for i, msg := range log.Messages() {
		s := msg.String()
		if r := []rune(s); len(r) > 200 {
			s = string(r[:200])
		}
		fmt.Printf("Message %d: %s\n", i, s)
	}
}
