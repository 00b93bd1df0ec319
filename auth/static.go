package auth

import (
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
)

var _ core.Authoriser = (*Static)(nil)

// Any grants its senders every permission.
const Any = "*"

// Static grants permissions by sender globs from configuration.
// Each glob is matched against both "sender" and "source:sender".
type Static struct {
	grants map[string][]glob.Glob
	log    *slog.Logger
}

func New(cfg config.Auth, log *slog.Logger) (*Static, error) {
	s := &Static{
		grants: make(map[string][]glob.Glob, len(cfg)),
		log:    log,
	}

	for permission, senders := range cfg {
		for _, sender := range senders {
			g, err := glob.Compile(sender, ':')
			if err != nil {
				return nil, fmt.Errorf("permission %v sender glob %v compilation failed: %w", permission, sender, err)
			}
			s.grants[permission] = append(s.grants[permission], g)
		}
	}

	return s, nil
}

func (s *Static) Authorise(e *core.Event, permission string) bool {
	if len(e.Sender) == 0 {
		return false
	}

	qualified := e.Source + ":" + e.Sender
	for _, p := range []string{permission, Any} {
		for _, g := range s.grants[p] {
			if g.Match(e.Sender) || g.Match(qualified) {
				s.log.Debug("permission granted",
					"permission", permission,
					"sender", qualified,
				)
				return true
			}
		}
	}

	s.log.Info("permission denied",
		"permission", permission,
		"sender", qualified,
	)
	return false
}

type allowAll struct{}

func (allowAll) Authorise(*core.Event, string) bool { return true }

type denyAll struct{}

func (denyAll) Authorise(*core.Event, string) bool { return false }

var (
	AllowAll core.Authoriser = allowAll{}
	DenyAll  core.Authoriser = denyAll{}
)
