package secscan

import "regexp"

// Rule pairs a name with a credential-shaped pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultRules is the fixed pattern catalog. Patterns target the secret
// shapes this repository could realistically leak: the bot token, the
// provider API keys, and the database connection string, plus the usual
// generic suspects.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "discord-bot-token",
			Pattern: regexp.MustCompile(`[MNO][A-Za-z\d]{23,25}\.[A-Za-z\d_-]{6}\.[A-Za-z\d_-]{27,38}`),
		},
		{
			Name:    "google-api-key",
			Pattern: regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
		},
		{
			Name:    "mongodb-credentials-uri",
			Pattern: regexp.MustCompile(`mongodb(?:\+srv)?://[^\s:/@]+:[^\s@]+@[^\s"']+`),
		},
		{
			Name:    "coinmarketcap-api-key",
			Pattern: regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`),
		},
		{
			Name:    "aws-access-key-id",
			Pattern: regexp.MustCompile(`(?:A3T[A-Z0-9]|AKIA|ASIA)[A-Z0-9]{16}`),
		},
		{
			Name:    "github-token",
			Pattern: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36,}`),
		},
		{
			Name:    "slack-token",
			Pattern: regexp.MustCompile(`xox[baprs]-[A-Za-z0-9][A-Za-z0-9-]{10,}`),
		},
		{
			Name:    "private-key-block",
			Pattern: regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |PGP |DSA )?PRIVATE KEY-----`),
		},
		{
			Name:    "generic-secret-assignment",
			Pattern: regexp.MustCompile(`(?i)(?:api[_-]?key|secret|token|password|passwd)\s*[:=]\s*["'][^"'\s]{8,}["']`),
		},
	}
}
