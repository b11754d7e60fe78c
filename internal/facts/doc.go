// Package facts holds the explicit name -> resolver table that fwfacts builds at
// startup. A fact resolves to a policy string or to "unknown"; confinement keeps
// Linux-only facts from running elsewhere.
package facts
