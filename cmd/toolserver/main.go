// Command toolserver is an MCP server that exposes the built-in bash and
// file editor tools over stdio.
//
// Any MCP client can discover and call the tools, including llmmetrics itself
// through an MCP_CONFIG entry:
//
//	{
//	    "mcpServers": {
//	        "local-tools": {
//	            "command": "go",
//	            "args": ["run", "./cmd/toolserver", "-dir", "/tmp/sandbox"]
//	        }
//	    }
//	}
//
// Tool names are prefixed with -prefix so they do not collide with the
// built-ins of the connecting agent.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/spetersoncode/convo/mcp"
	"github.com/spetersoncode/convo/tool"
)

func main() {
	wd, _ := os.Getwd()
	dir := flag.String("dir", wd, "working directory for the bash and editor tools")
	prefix := flag.String("prefix", "local_", "prefix added to every tool name")
	timeout := flag.Duration("timeout", 2*time.Minute, "bash command timeout")
	flag.Parse()

	// Stdout carries the protocol, so logs go to stderr.
	log.SetOutput(os.Stderr)

	bash, err := tool.NewBashTool(*dir, tool.WithBashTimeout(*timeout))
	if err != nil {
		log.Fatal(err)
	}
	editor := tool.NewFileEditorTool(tool.WithBasePath(*dir))

	registry := tool.NewRegistry(
		renamed(bash, *prefix),
		renamed(editor, *prefix),
		tool.Func(*prefix+"time", "Get the current time in RFC 3339 format", timeHandler),
	)

	if err := mcp.ServeStdio(registry,
		mcp.WithName("convo-toolserver"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		log.Fatal(err)
	}
}

func renamed(reg tool.Registration, prefix string) tool.Registration {
	t := reg.Tool
	t.Name = prefix + t.Name
	return tool.WithTool(t, reg.Handler)
}

// TimeArgs are the arguments for the time tool.
type TimeArgs struct {
	Zone string `json:"zone,omitempty" desc:"IANA time zone name, defaults to UTC"`
}

func timeHandler(ctx context.Context, args TimeArgs) (string, error) {
	loc := time.UTC
	if args.Zone != "" {
		l, err := time.LoadLocation(args.Zone)
		if err != nil {
			return "", err
		}
		loc = l
	}
	return time.Now().In(loc).Format(time.RFC3339), nil
}
