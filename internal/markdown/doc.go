// Package markdown renders the Markdown snippets embedded in translations and
// templates (the "markdown" template filter) into HTML.
package markdown
