package bot

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// commandsFromRegistry translates every registered tool into a slash
// command declaration. Required options come before optional ones,
// which Discord enforces at registration time.
func commandsFromRegistry(registry *tools.Registry) []*discordgo.ApplicationCommand {
	all := registry.All()
	commands := make([]*discordgo.ApplicationCommand, 0, len(all))
	for _, tool := range all {
		commands = append(commands, commandFromTool(tool))
	}
	return commands
}

func commandFromTool(tool *tools.Tool) *discordgo.ApplicationCommand {
	required := make(map[string]bool, len(tool.Schema.Required))
	for _, name := range tool.Schema.Required {
		required[name] = true
	}

	var opts []*discordgo.ApplicationCommandOption
	appendOptions := func(wantRequired bool) {
		for _, name := range sortedPropertyNames(tool.Schema.Properties) {
			if required[name] != wantRequired {
				continue
			}
			prop := tool.Schema.Properties[name]
			opts = append(opts, &discordgo.ApplicationCommandOption{
				Type:        optionType(prop.Type),
				Name:        name,
				Description: truncate(prop.Description, 100),
				Required:    wantRequired,
			})
		}
	}
	appendOptions(true)
	appendOptions(false)

	return &discordgo.ApplicationCommand{
		Name:        tool.Name,
		Description: truncate(tool.Description, 100),
		Options:     opts,
	}
}

// optionType maps schema argument types onto Discord option types.
// Arrays travel as comma-separated strings and are split back apart in
// buildArgs.
func optionType(schemaType string) discordgo.ApplicationCommandOptionType {
	switch schemaType {
	case "number":
		return discordgo.ApplicationCommandOptionNumber
	case "integer":
		return discordgo.ApplicationCommandOptionInteger
	case "boolean":
		return discordgo.ApplicationCommandOptionBoolean
	case "attachment":
		return discordgo.ApplicationCommandOptionAttachment
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

func sortedPropertyNames(props map[string]tools.Property) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitList turns a comma-separated option value into the []any shape
// the argument validator expects for array parameters.
func splitList(val string) []any {
	parts := strings.Split(val, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
