// Package naming builds new file names for `ved rename`: random
// hexadecimal names, optionally joined to the old stem, and names
// sanitized for use on any common filesystem.
package naming
