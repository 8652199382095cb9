// Package settings holds the guild preference tools. The feature tool
// reads and writes the per-guild default tool record.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/database"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// ToolStore is the slice of the database layer the feature tool needs.
type ToolStore interface {
	SetTool(ctx context.Context, guildID, tool string) error
	GetTool(ctx context.Context, guildID string) (string, bool, error)
}

// FeatureTool reports or updates the guild's default tool. Without the
// tool argument it shows the current setting; with it, it stores the
// named tool, or disables the default when given the disable keyword.
// The dispatcher injects guild_id from the interaction scope.
func FeatureTool(store ToolStore, names func() []string) *tools.Tool {
	return &tools.Tool{
		Name:        "feature",
		Description: "Show or set the default tool for this server",
		Cog:         tools.CogSettings,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{
				"tool": {
					Type:        "string",
					Description: "Tool name to set as default, or 'disabled' to turn it off; omit to show the current setting",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*tools.Output, error) {
			return executeFeature(ctx, store, names, args)
		},
	}
}

func executeFeature(ctx context.Context, store ToolStore, names func() []string, args map[string]any) (*tools.Output, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: MONGO_DB_URL is not set", tools.ErrMissingConfig)
	}

	guildID, _ := args["guild_id"].(string)
	if guildID == "" {
		return nil, fmt.Errorf("feature requires a server or DM scope")
	}

	raw, _ := args["tool"].(string)
	choice := strings.ToLower(strings.TrimSpace(raw))

	if choice == "" {
		tool, enabled, err := store.GetTool(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to read default tool: %w", err)
		}
		if !enabled {
			return &tools.Output{Text: "No default tool is set."}, nil
		}
		return &tools.Output{Text: fmt.Sprintf("Default tool is **%s**.", tool)}, nil
	}

	if choice == database.DisabledSentinel {
		if err := store.SetTool(ctx, guildID, ""); err != nil {
			return nil, fmt.Errorf("failed to disable default tool: %w", err)
		}
		return &tools.Output{Text: "Default tool disabled."}, nil
	}

	if !validName(names(), choice) {
		return nil, fmt.Errorf("unknown tool %q, available: %s",
			choice, strings.Join(sortedNames(names()), ", "))
	}

	if err := store.SetTool(ctx, guildID, choice); err != nil {
		return nil, fmt.Errorf("failed to set default tool: %w", err)
	}
	return &tools.Output{Text: fmt.Sprintf("Default tool set to **%s**.", choice)}, nil
}

func validName(names []string, candidate string) bool {
	for _, n := range names {
		if n == candidate {
			return true
		}
	}
	return false
}

func sortedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
