// Package types defines shared leaf types for the atelier client.
package types

// Version is the client version reported by the CLI.
const Version = "0.1.0"
