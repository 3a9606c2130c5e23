package extract

import (
	"context"
	"encoding/json"
	"os/exec"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolforge/internal/domain"
)

// LiveIntrospector starts a runnable MCP server over stdio and asks it for
// its tool list. This bypasses every heuristic: the server declares its own
// surface, schemas included.
type LiveIntrospector struct {
	logger *zap.Logger
	impl   *mcp.Implementation
}

func NewLiveIntrospector(logger *zap.Logger) *LiveIntrospector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveIntrospector{
		logger: logger.Named("extract.live"),
		impl:   &mcp.Implementation{Name: "toolforge", Version: "0.1.0"},
	}
}

// ListTools launches the command, performs the MCP handshake, and returns
// the declared tools. The context bounds the whole exchange; the spawned
// process dies with it.
func (li *LiveIntrospector) ListTools(ctx context.Context, command string, args ...string) ([]domain.ExtractedTool, error) {
	const op = "live.ListTools"

	cmd := exec.CommandContext(ctx, command, args...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(li.impl, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, op, "mcp handshake failed", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			li.logger.Debug("session close", zap.Error(cerr))
		}
	}()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, op, "tools/list failed", err)
	}

	tools := make([]domain.ExtractedTool, 0, len(res.Tools))
	for _, declared := range res.Tools {
		schema, err := schemaFromDeclared(declared.InputSchema)
		if err != nil {
			return nil, domain.E(domain.CodeUnavailable, op, "decoding input schema for "+declared.Name, err)
		}
		if schema == nil {
			schema = domain.ObjectSchema(nil, nil)
		}
		paramCount := len(schema.Properties)

		signals := domain.DocSignals{
			DescriptionLen: len(declared.Description),
			ParamCount:     paramCount,
			TypedParams:    paramCount,
		}
		factors := domain.FactorsFromSignals(signals, domain.SourceIntrospect)
		tools = append(tools, domain.ExtractedTool{
			Name:              declared.Name,
			Description:       declared.Description,
			InputSchema:       schema,
			Source:            domain.ToolSource{Type: domain.SourceIntrospect, File: command},
			Confidence:        factors.Score(),
			ConfidenceFactors: &factors,
		})
	}

	li.logger.Info("live introspection complete",
		zap.String("command", command),
		zap.Int("tools", len(tools)))
	return tools, nil
}

// schemaFromDeclared converts the SDK's wire-decoded schema (an untyped
// map[string]any on the client side) into the typed form the domain uses.
func schemaFromDeclared(declared any) (*jsonschema.Schema, error) {
	switch v := declared.(type) {
	case nil:
		return nil, nil
	case *jsonschema.Schema:
		return v, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		schema := new(jsonschema.Schema)
		if err := json.Unmarshal(raw, schema); err != nil {
			return nil, err
		}
		return schema, nil
	}
}
