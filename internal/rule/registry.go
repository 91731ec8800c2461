package rule

import (
	"sort"

	"github.com/friendsofgo/errors"

	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

// Constructor builds a rule from app-level config and collaborators.
type Constructor func(cfg Config, repo storage.Repository, l pkgLog.Logger) Rule

// ErrUnknownRule rejects lookups of rules the registry does not define.
var ErrUnknownRule = errors.New("unknown rule")

// registry maps rule names to constructors. Rules are selected here by
// explicit name, not dynamic dispatch.
var registry = map[string]Constructor{
	IntervalRuleName: func(cfg Config, repo storage.Repository, l pkgLog.Logger) Rule {
		return NewIntervalEventsRule(cfg, repo, l)
	},
	VersionRuleName: func(cfg Config, repo storage.Repository, l pkgLog.Logger) Rule {
		return NewVersionEventsRule(cfg, repo, l)
	},
}

// New constructs a registered rule by name.
func New(name string, cfg Config, repo storage.Repository, l pkgLog.Logger) (Rule, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownRule, name)
	}
	return ctor(cfg, repo, l), nil
}

// Names lists all registered rule names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
