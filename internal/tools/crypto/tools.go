package crypto

import (
	"context"
	"fmt"
	"strings"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// PriceTool returns the token price lookup tool.
func PriceTool(c *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "price",
		Description: "Look up the current price and market data for a token",
		Cog:         tools.CogCrypto,
		Execute:     c.executePrice,
		Schema: tools.Schema{
			Required: []string{"token"},
			Properties: map[string]tools.Property{
				"token": {
					Type:        "string",
					Description: "Token ticker symbol (e.g. BTC) or numeric platform ID",
				},
				"currency": {
					Type:        "string",
					Description: "Fiat currency for the quote (default USD)",
					Default:     "USD",
				},
			},
		},
	}
}

func (c *Client) executePrice(ctx context.Context, args map[string]any) (*tools.Output, error) {
	token, _ := args["token"].(string)
	mode, lookup, err := resolveLookup(token)
	if err != nil {
		return nil, err
	}

	fiat := "USD"
	if v, ok := args["currency"].(string); ok && strings.TrimSpace(v) != "" {
		fiat = strings.ToUpper(strings.TrimSpace(v))
	}

	quote, err := c.fetchQuote(ctx, mode, lookup, fiat)
	if err != nil {
		return nil, err
	}

	out := &tools.Output{
		Text: fmt.Sprintf("**%s (%s)** — %s", quote.Name, quote.Symbol, formatPrice(quote.Price, fiat)),
		Fields: []tools.Field{
			{Name: "Price", Value: formatPrice(quote.Price, fiat), Inline: true},
			{Name: "24h Change", Value: formatChange(quote.Change24h), Inline: true},
		},
	}
	if quote.MarketCap > 0 {
		out.Fields = append(out.Fields, tools.Field{
			Name: "Market Cap", Value: formatLarge(quote.MarketCap, fiat), Inline: true,
		})
	}
	if quote.Volume24h > 0 {
		out.Fields = append(out.Fields, tools.Field{
			Name: "Volume 24h", Value: formatLarge(quote.Volume24h, fiat), Inline: true,
		})
	}
	if quote.Rank > 0 {
		out.Fields = append(out.Fields, tools.Field{
			Name: "Rank", Value: fmt.Sprintf("#%d", quote.Rank), Inline: true,
		})
	}
	return out, nil
}

// formatPrice widens precision for micro-cap prices so they do not render
// as 0.00.
func formatPrice(price float64, fiat string) string {
	switch {
	case price != 0 && price < 0.0001:
		return fmt.Sprintf("%.10f %s", price, fiat)
	case price != 0 && price < 1:
		return fmt.Sprintf("%.6f %s", price, fiat)
	default:
		return fmt.Sprintf("%.2f %s", price, fiat)
	}
}

func formatChange(pct float64) string {
	arrow := "📈"
	if pct < 0 {
		arrow = "📉"
	}
	return fmt.Sprintf("%s %+.2f%%", arrow, pct)
}

// formatLarge renders market caps and volumes with magnitude suffixes.
func formatLarge(v float64, fiat string) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT %s", v/1e12, fiat)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB %s", v/1e9, fiat)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM %s", v/1e6, fiat)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK %s", v/1e3, fiat)
	default:
		return fmt.Sprintf("%.2f %s", v, fiat)
	}
}
