// Package gituser reads the user's identity from the global git config.
package gituser

import (
	"strings"

	"github.com/go-git/go-git/v5/config"

	"github.com/mifan-labs/mifan/internal/output"
)

// Lookup returns "Name <email>" from the global git config. Missing parts
// are left out; an unreadable config yields "".
func Lookup() string {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		output.Debug("reading global git config", "err", err)
		return ""
	}
	return Format(cfg.User.Name, cfg.User.Email)
}

// Format joins a name and email the way package.json author fields expect.
func Format(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return name
	case name == "":
		return "<" + email + ">"
	}
	return name + " <" + email + ">"
}
