package command

import "github.com/sandevgo/gsb/internal/core"

// Permission decides whether a caller may run a command.
type Permission func(c *core.Caller) bool

// Anyone always allows.
func Anyone(*core.Caller) bool {
	return true
}

// And allows only when every permission allows. It stops at the first refusal.
func And(perms ...Permission) Permission {
	return func(c *core.Caller) bool {
		for _, p := range perms {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// Or allows when any permission allows. It stops at the first approval.
func Or(perms ...Permission) Permission {
	return func(c *core.Caller) bool {
		for _, p := range perms {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// Not inverts a permission.
func Not(p Permission) Permission {
	return func(c *core.Caller) bool {
		return !p(c)
	}
}

// FromHosts allows connections whose host is one of hosts.
func FromHosts(hosts ...string) Permission {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[h] = struct{}{}
	}
	return func(c *core.Caller) bool {
		if c.Conn == nil {
			return false
		}
		_, ok := set[c.Conn.Host()]
		return ok
	}
}
