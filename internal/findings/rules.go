package findings

import "regexp"

// Finding categories. The set is fixed but extensible: a new category
// only needs a new Rule row below.
const (
	CategorySQL          = "sql"
	CategoryHTTP         = "http"
	CategoryFileIO       = "file-io"
	CategoryCrypto       = "crypto"
	CategoryReflection   = "reflection"
	CategoryProcessStart = "process-start"
	CategoryCredential   = "credential"
	CategoryPlatform     = "platform-internal"
	CategoryURL          = "url"
)

// Rule is one row of the classifier table. Exactly one matcher is set:
// Substrings match case-insensitively against each line; Pattern is a
// compiled regexp whose case policy is fixed in the expression itself.
type Rule struct {
	Category   string
	Substrings []string
	Pattern    *regexp.Regexp
}

// DefaultRules is the bundled heuristics table. Every rule is evaluated
// against every code unit independently; ordering carries no meaning.
var DefaultRules = []Rule{
	{Category: CategorySQL, Substrings: []string{"select ", "insert ", "update ", "delete ", "exec ", "sp_", "merge "}},
	{Category: CategoryHTTP, Substrings: []string{"http://", "https://", "webrequest", "httpclient", "restsharp"}},
	{Category: CategoryFileIO, Substrings: []string{"filesystem", "file.", "directory.", "streamreader", "streamwriter"}},
	{Category: CategoryCrypto, Substrings: []string{"sha", "md5", "aes", "rsa", "cryptography", "rijndael"}},
	{Category: CategoryReflection, Substrings: []string{"reflection", "gettype(", "activator.createinstance"}},
	{Category: CategoryProcessStart, Substrings: []string{"process.start", "shell(", "wscript.shell"}},
	{Category: CategoryCredential, Pattern: regexp.MustCompile(`(?i)(password\s*=|pwd\s*=|apikey|api_key|token\s*=|bearer\s+)`)},
	{Category: CategoryPlatform, Substrings: []string{"blueprism", "automate", "session", "resourcepc"}},
	{Category: CategoryURL, Pattern: regexp.MustCompile(`(?i)https?://[^\s"'<>]+`)},
}

// Categories returns the distinct category labels of a rule set, in
// table order.
func Categories(rules []Rule) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}
