package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
)

// Output formats of the tree command.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var treeFormats = []string{formatText, formatJSON, formatMarkdown}
