// Package frequency provides sketches that estimate how often an element
// occurs in a stream.
//
// CountMinSketch answers point queries with a one-sided error: estimates
// never undercount and overcount by at most a configurable fraction of
// the stream length. CountSketch trades that guarantee for an unbiased
// estimate whose error scales with the L2 norm of the frequency vector,
// which makes it more accurate on heavily skewed streams.
package frequency
