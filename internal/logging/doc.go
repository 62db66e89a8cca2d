// Package logging provides leveled logging on top of the standard library
// log package.
//
// The level is read once from the environment (DEBUG, then LOG_LEVEL) and
// defaults to info. Tests may override it with SetLevel.
package logging
