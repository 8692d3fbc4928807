// Package marketengine holds the mediex bid/ask market and escrow engine.
//
// The engine keeps bids in custody, matches them against seller asks,
// validates proportional share splits, and settles ownership transfer plus
// fund distribution through the external media registry. Domain and
// application logic stay decoupled from runtime concerns through ports and
// adapter composition.
package marketengine
