package logging

import (
	"net/url"
	"strings"
)

var secretKeyHints = []string{"TOKEN", "SECRET", "PASSWORD", "CREDENTIAL", "AUTH", "PRIVATE", "API_KEY"}

// IsSecretKey reports whether a log attribute or environment variable
// name suggests its value is a credential.
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, hint := range secretKeyHints {
		if strings.Contains(upper, hint) {
			return true
		}
	}
	return false
}

// RedactURL hides the password in URLs such as a mirror passed through
// installer_url. Anything that is not an absolute URL is returned unchanged.
func RedactURL(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "@") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
