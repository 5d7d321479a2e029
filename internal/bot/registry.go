package bot

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lox/discardbot/internal/randutil"
	"github.com/lox/discardbot/sdk"
)

var constructors = map[string]func(seed int64, logger *log.Logger) sdk.Agent{
	"call": func(_ int64, logger *log.Logger) sdk.Agent { return NewCallBot(logger) },
	"fold": func(_ int64, logger *log.Logger) sdk.Agent { return NewFoldBot(logger) },
	"random": func(seed int64, logger *log.Logger) sdk.Agent {
		return NewRandBot(randutil.New(seed), logger)
	},
}

// Names lists the registered baseline bots.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the baseline bot registered under name.
func New(name string, seed int64, logger *log.Logger) (sdk.Agent, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot %q (want one of %v)", name, Names())
	}
	return ctor(seed, logger), nil
}
