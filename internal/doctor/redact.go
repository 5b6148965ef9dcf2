package doctor

import (
	"strings"

	"github.com/thoreinstein/pyup/internal/logging"
)

// tokenPrefixes mark a value as a credential whatever its variable is called.
var tokenPrefixes = []string{"ghp_", "gho_", "ghs_", "github_pat_", "glpat-", "AKIA"}

// maskEnv returns a copy of vars with credentials cut down to their last
// four characters.
func maskEnv(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		if logging.IsSecretKey(k) || hasTokenPrefix(v) {
			v = maskValue(v)
		}
		out[k] = v
	}
	return out
}

func maskValue(v string) string {
	if len(v) <= 4 {
		return "********"
	}
	return "****" + v[len(v)-4:]
}

func hasTokenPrefix(v string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}
