// Package cmd implements the kbmaskin command-line interface.
//
// The commands mirror the two halves of the workflow: "download" fetches
// JPG attachments from Gmail, "process" renames and merges local JPGs into
// per-publication PDFs, and "run" chains both under one session. "auth"
// performs the one-time OAuth code exchange.
package cmd
