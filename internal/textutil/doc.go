// Package textutil provides small text helpers shared by the catalog loader
// and the CLI.
//
// The primary use cases are:
//   - Checking that playlist keys are safe to use as directory names
//   - Normalizing free-form names into filesystem-safe tokens
//   - Deriving display names from internal keys when none are configured
package textutil
