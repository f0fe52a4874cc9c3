// Package main provides the entry point for the spotifyclone application.
//
// spotifyclone is a terminal Spotify client: it signs in with OAuth,
// browses and searches the catalog, manages the user's library and plays
// track previews.
package main

import cmd "github.com/toozej/spotifyclone/cmd/spotifyclone"

// main delegates to the cmd package, which handles all command-line
// interface functionality.
func main() {
	cmd.Execute()
}
