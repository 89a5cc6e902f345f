// Package markdown loads Markdown documents from disk and renders them with
// goldmark. Extra extenders, such as the map directive, are registered on
// every engine the parser builds.
package markdown
