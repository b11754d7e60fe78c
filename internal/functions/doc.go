// Package functions provides template helpers and the explicit registry they are
// looked up from.
package functions
