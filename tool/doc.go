// Package tool provides the tool registry an agent dispatches calls through
// and the built-in tools every conversation starts with.
//
// Tools are described by a Registration: a definition the model sees and a
// Handler that runs the call. Func reflects the parameter schema from a
// struct type:
//
//	type GreetArgs struct {
//	    Name string `json:"name" desc:"Who to greet"`
//	}
//
//	reg := tool.Func("greet", "Greet someone",
//	    func(ctx context.Context, args GreetArgs) (string, error) {
//	        return "hello " + args.Name, nil
//	    })
//
// # Built-in Tools
//
//   - execute_bash: run a command with bash -c in a working directory
//   - str_replace_editor: view, create, str_replace, insert and undo_edit
//
// # Assembly
//
// Assemble joins built-ins with tools discovered elsewhere (see package mcp)
// into one ordered list and rejects duplicate names:
//
//	bash, err := tool.NewBashTool(workDir)
//	...
//	regs, err := tool.Assemble(
//	    []tool.Registration{bash, tool.NewFileEditorTool()},
//	    toolset.Registrations(),
//	)
//	...
//	registry := tool.NewRegistry(regs...)
package tool
