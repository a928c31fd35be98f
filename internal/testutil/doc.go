// Package testutil provides small graph fixture builders shared by package
// tests: source regions that fill their outputs with deterministic ramps and
// sink regions that only consume.
package testutil
