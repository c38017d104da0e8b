package tool

import (
	"context"
	"errors"
	"testing"

	ai "github.com/spetersoncode/convo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryArgs struct {
	Query string `json:"query" desc:"Search query"`
}

func echoTool(name string) Registration {
	return Func(name, "Echo "+name, func(ctx context.Context, args queryArgs) (string, error) {
		return name + ":" + args.Query, nil
	})
}

func TestRegistryOrder(t *testing.T) {
	registry := NewRegistry(echoTool("zeta"), echoTool("alpha")).Add(echoTool("mid"))

	assert.Equal(t, 3, registry.Len())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, registry.Names())

	tools := registry.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "zeta", tools[0].Name)
	assert.Equal(t, "mid", tools[2].Name)
}

func TestRegistryRegister(t *testing.T) {
	t.Run("rejects duplicate", func(t *testing.T) {
		registry := NewRegistry(echoTool("dupe"))
		err := registry.Register(echoTool("dupe"))

		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "dupe", dup.Name)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("add panics on duplicate", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRegistry(echoTool("dupe"), echoTool("dupe"))
		})
	})

	t.Run("lookup", func(t *testing.T) {
		registry := NewRegistry(echoTool("search"))

		h, ok := registry.Get("search")
		assert.True(t, ok)
		assert.NotNil(t, h)

		def, ok := registry.GetTool("search")
		assert.True(t, ok)
		assert.Equal(t, "Echo search", def.Description)
		assert.JSONEq(t, `{"type":"object","properties":{"query":{"type":"string","description":"Search query"}},"required":["query"]}`, string(def.Parameters))

		_, ok = registry.Get("missing")
		assert.False(t, ok)
	})
}

func TestRegistryExecute(t *testing.T) {
	failing := Func("fail", "Always fails", func(ctx context.Context, args queryArgs) (string, error) {
		return "", errors.New("backend down")
	})
	registry := NewRegistry(echoTool("search"), failing)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c1", Name: "search", Arguments: `{"query":"go"}`})
		require.NoError(t, err)
		assert.Equal(t, "c1", res.ToolCallID)
		assert.Equal(t, "search", res.Name)
		assert.Equal(t, "search:go", res.Content)
		assert.False(t, res.IsError)
	})

	t.Run("empty arguments decode as empty object", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c2", Name: "search"})
		require.NoError(t, err)
		assert.Equal(t, "search:", res.Content)
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c3", Name: "fail", Arguments: `{}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "backend down", res.Content)
	})

	t.Run("invalid arguments become error result", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c4", Name: "search", Arguments: `{"query":`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := registry.Execute(ctx, ai.ToolCall{ID: "c5", Name: "nope"})
		var nf *ErrToolNotFound
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nope", nf.Name)
	})
}

func TestAssemble(t *testing.T) {
	base := []Registration{echoTool("execute_bash"), echoTool("str_replace_editor")}

	t.Run("no discovered tools keeps built-ins in order", func(t *testing.T) {
		regs, err := Assemble(base, nil)
		require.NoError(t, err)
		require.Len(t, regs, 2)
		assert.Equal(t, "execute_bash", regs[0].Tool.Name)
		assert.Equal(t, "str_replace_editor", regs[1].Tool.Name)
	})

	t.Run("discovered tools follow built-ins", func(t *testing.T) {
		discovered := []Registration{echoTool("fetch"), echoTool("aardvark")}
		regs, err := Assemble(base, discovered)
		require.NoError(t, err)

		names := make([]string, len(regs))
		for i, r := range regs {
			names[i] = r.Tool.Name
		}
		assert.Equal(t, []string{"execute_bash", "str_replace_editor", "fetch", "aardvark"}, names)
		assert.Len(t, base, 2)
		assert.Len(t, discovered, 2)
	})

	t.Run("duplicate name aborts", func(t *testing.T) {
		regs, err := Assemble(base, []Registration{echoTool("execute_bash")})
		assert.Nil(t, regs)
		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "execute_bash", dup.Name)
	})
}
