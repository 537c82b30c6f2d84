// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under the application
// home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable role prompts with built-in defaults
package file
