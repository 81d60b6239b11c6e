// ABOUTME: PolicyStore interface and env-backed allow-list implementation
// ABOUTME: Decides superadmin membership from a fixed email list

package identity

import "strings"

// PolicyStore answers whether an email identifies a platform superadmin.
// It is the single source of truth for operator privilege; the upstream
// role field never distinguishes platform operators from tenant owners.
type PolicyStore interface {
	IsSuperadmin(email string) bool
}

// EnvAllowlist is a PolicyStore backed by a fixed set of emails,
// typically parsed from a comma-separated environment value at process
// start. Membership is an exact, case-sensitive string match: no
// trimming inside entries, no unicode normalization, no domain
// wildcards.
type EnvAllowlist struct {
	emails map[string]struct{}
}

// NewEnvAllowlist parses a comma-separated email list. Surrounding
// whitespace on each entry is list-format noise and is stripped; the
// entries themselves are stored verbatim. Empty entries are ignored.
func NewEnvAllowlist(raw string) *EnvAllowlist {
	emails := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		emails[entry] = struct{}{}
	}
	return &EnvAllowlist{emails: emails}
}

// IsSuperadmin reports whether email is on the allow-list.
func (a *EnvAllowlist) IsSuperadmin(email string) bool {
	_, ok := a.emails[email]
	return ok
}

// Len returns the number of allow-listed emails.
func (a *EnvAllowlist) Len() int {
	return len(a.emails)
}
