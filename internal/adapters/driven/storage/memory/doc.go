// Package memory provides in-memory implementations of the storage ports.
// They back tests and the --ephemeral mode, where nothing outlives the process.
package memory
