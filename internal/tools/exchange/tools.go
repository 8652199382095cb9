package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// ConvertTool returns the currency conversion tool.
func ConvertTool(c *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "convert",
		Description: "Convert an amount from one fiat currency to another",
		Cog:         tools.CogExchange,
		Execute:     c.executeConvert,
		Schema: tools.Schema{
			Required: []string{"from_currency", "to_currency", "amount"},
			Properties: map[string]tools.Property{
				"from_currency": {
					Type:        "string",
					Description: "Source currency code (e.g. USD)",
				},
				"to_currency": {
					Type:        "string",
					Description: "Target currency code (e.g. EUR)",
				},
				"amount": {
					Type:        "number",
					Description: "Amount to convert, must be greater than zero",
				},
			},
		},
	}
}

// RatesTool returns the exchange-rate table tool.
func RatesTool(c *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "rates",
		Description: "Show current exchange rates for a base currency",
		Cog:         tools.CogExchange,
		Execute:     c.executeRates,
		Schema: tools.Schema{
			Required: []string{"base"},
			Properties: map[string]tools.Property{
				"base": {
					Type:        "string",
					Description: "Base currency code (e.g. USD)",
				},
				"currencies": {
					Type:        "array",
					Description: "Target currency codes (empty = all)",
					Items:       &tools.PropertyItems{Type: "string"},
				},
			},
		},
	}
}

func (c *Client) executeConvert(ctx context.Context, args map[string]any) (*tools.Output, error) {
	from := strings.ToUpper(strings.TrimSpace(argString(args, "from_currency")))
	to := strings.ToUpper(strings.TrimSpace(argString(args, "to_currency")))
	amount := argNumber(args, "amount")

	if from == "" || to == "" {
		return nil, fmt.Errorf("both source and target currencies are required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	// Identity conversion never touches the network: the rate is 1.0 and
	// the amount passes through unchanged.
	if from == to {
		return convertOutput(from, to, amount, amount, 1.0, ""), nil
	}

	table, err := c.fetchRates(ctx, from)
	if err != nil {
		return nil, err
	}

	rate, ok := table.Rates[to]
	if !ok {
		return nil, fmt.Errorf("target currency %s not found in rate table", to)
	}

	return convertOutput(from, to, amount, amount*rate, rate, table.LastUpdated), nil
}

func (c *Client) executeRates(ctx context.Context, args map[string]any) (*tools.Output, error) {
	base := strings.ToUpper(strings.TrimSpace(argString(args, "base")))
	if base == "" {
		return nil, fmt.Errorf("base currency is required")
	}

	wanted := argStringSlice(args, "currencies")

	table, err := c.fetchRates(ctx, base)
	if err != nil {
		return nil, err
	}

	rates := table.Rates
	if len(wanted) > 0 {
		filtered := make(map[string]float64, len(wanted))
		for _, code := range wanted {
			code = strings.ToUpper(strings.TrimSpace(code))
			if rate, ok := rates[code]; ok {
				filtered[code] = rate
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("none of the requested currencies found for base %s", base)
		}
		rates = filtered
	}

	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := &tools.Output{
		Text: fmt.Sprintf("Exchange rates for **%s**", base),
	}
	for _, code := range codes {
		if code == base {
			continue
		}
		out.Fields = append(out.Fields, tools.Field{
			Name:   code,
			Value:  formatAmount(rates[code]),
			Inline: true,
		})
	}
	return out, nil
}

func convertOutput(from, to string, amount, result, rate float64, updated string) *tools.Output {
	out := &tools.Output{
		Text: fmt.Sprintf("%s %s = **%s %s**",
			formatAmount(amount), from, formatAmount(result), to),
		Fields: []tools.Field{
			{Name: "Rate", Value: fmt.Sprintf("1 %s = %s %s", from, formatAmount(rate), to), Inline: true},
		},
	}
	if updated != "" {
		out.Fields = append(out.Fields, tools.Field{Name: "Updated", Value: updated, Inline: true})
	}
	return out
}

// formatAmount renders a number with two decimals, widening precision for
// sub-unit values so small rates do not collapse to 0.00.
func formatAmount(v float64) string {
	av := v
	if av < 0 {
		av = -av
	}
	switch {
	case av != 0 && av < 0.01:
		return fmt.Sprintf("%.6f", v)
	case av != 0 && av < 1:
		return fmt.Sprintf("%.4f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argNumber(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func argStringSlice(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
