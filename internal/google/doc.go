// Package google handles OAuth2 authentication against the Gmail API.
//
// The operator supplies an OAuth client credentials JSON file (the
// "installed app" kind downloaded from the Google Cloud console). Tokens
// are cached per account under the user cache directory and refreshed
// automatically by the token source.
package google
