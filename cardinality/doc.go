// Package cardinality provides estimators for the number of distinct
// elements in a stream.
//
// LinearCounter is exact in spirit for small streams: it hashes every
// element onto an m-bit map and estimates the cardinality from the
// fraction of bits left unset. ProbabilisticCounter implements the
// Flajolet-Martin sketch, and HyperLogLog the state of the art estimator
// with a relative error of about 1.04/sqrt(2^precision).
package cardinality
