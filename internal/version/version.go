// Package version contains information on the current version of
// neotoma. It is split from the main packages for easy use.
package version

// Current is the string representing the current version of neotoma.
const Current = "0.1.0"
