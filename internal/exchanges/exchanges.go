// Package exchanges holds the built-in exchange calendar definitions.
// Each definition is a plain configuration record handed to the engine;
// there is no per-exchange code beyond the data below.
package exchanges

import (
	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
	"github.com/gerrymanoim/exchange-calendars/internal/registry"
)

// Builtin returns every built-in calendar configuration.
func Builtin() []calendar.Config {
	return []calendar.Config{
		XNYS(),
		XTAI(),
		XSHG(),
		USFutures(),
	}
}

// BuiltinAliases maps the common alternate names onto canonical codes.
func BuiltinAliases() map[string]string {
	return map[string]string{
		"NYSE":   "XNYS",
		"NASDAQ": "XNYS",
		"XNAS":   "XNYS",
		"TSEC":   "XTAI",
		"SSE":    "XSHG",
		"CME":    "us_futures",
	}
}

// RegisterBuiltins registers every built-in calendar and alias.
func RegisterBuiltins(reg *registry.Registry) error {
	for _, cfg := range Builtin() {
		if err := reg.Register(cfg, false); err != nil {
			return err
		}
	}
	for alias, target := range BuiltinAliases() {
		if err := reg.Alias(alias, target, false); err != nil {
			return err
		}
	}
	return nil
}
