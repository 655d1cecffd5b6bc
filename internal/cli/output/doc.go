// Package output renders gathered configuration for the sumconf command.
//
//   - formatter.go: Formatter interface and factory
//   - yaml.go, json.go: document output
//   - table.go: flattened KEY/VALUE tables
//   - sources.go: values grouped by the file that set them
//
// Values are normalized first so that YAML maps with non-string keys and
// sets render in every format.
package output
