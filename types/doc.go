// Package types defines the error model shared by every touchstone package.
//
// All engine failures carry a stable ErrorCode so callers can branch on the
// failure class (store outage vs. local precondition) without string matching.
package types
