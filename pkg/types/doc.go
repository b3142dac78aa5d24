// Package types defines the Shelf storage interface, entity types,
// configuration, and standard errors for the shelf persistence core.
package types
