// Package file provides file-based configuration and prompt storage.
//
// Configuration lives in a TOML file under the docqa config directory
// (~/.docqa by default). Prompts are plain text files in a prompts/
// subdirectory so users can customise LLM behaviour without rebuilding.
package file
