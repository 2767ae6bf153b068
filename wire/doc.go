// Package wire implements the on-wire frame layout shared by every bus
// message: an 8-byte length prefix, a length-delimited header record, and a
// payload/extra body.
package wire
