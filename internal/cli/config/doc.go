// Package config provides the CLI's own configuration.
//
// The sumconf command configures itself the way it configures everything
// else. Settings are layered, later sources overriding earlier ones:
//
//  1. Built-in defaults
//  2. A gather of the "sumconf" application from the working directory
//  3. The file named by --config (YAML)
//  4. SUMCONF_* environment variables
//  5. Command-line flags
//
// Layering is done with koanf; the result is unmarshalled into Config.
package config
