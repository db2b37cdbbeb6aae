// Package urls centralizes external documentation links used in CLI help
// and error messages, so they are updated in one place.
package urls
