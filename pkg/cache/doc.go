// Package cache provides a keyed value cache with LRU eviction and
// at-most-once construction per key. The gateway uses it to share heavy
// detection engines between concurrent pipeline runs without duplicate
// initialization on first use.
package cache
