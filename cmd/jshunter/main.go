// Package main provides the entry point for the jshunter CLI.
//
// jshunter filters a list of JavaScript URLs down to the live ones, extracts
// endpoints from each and scans each for secrets.
//
// Usage:
//
//	jshunter run -i js_urls.txt -o js_out
//	jshunter history --limit 5
//
// See --help for all available options.
package main

import "os"

func main() {
	os.Exit(Execute())
}
