package config

import "go.uber.org/fx"

// Module exposes configuration parsed from the given command line arguments.
func Module(args []string) fx.Option {
	return fx.Provide(func() (*Config, error) { return Load(args) })
}
