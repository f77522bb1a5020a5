// Package gmail wraps the Gmail API for the attachment download side of
// the application: building search queries, paging through matching
// messages, extracting JPG attachment metadata and fetching attachment
// payloads.
package gmail
