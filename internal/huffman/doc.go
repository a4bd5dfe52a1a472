// Package huffman builds prefix codes over byte streams and packs symbols
// into MSB-first bitstreams.
//
// The stages are used in order: BuildFrequencyTable, BuildTree,
// BuildEncodingMap, Pack. The decoder side is DeserializeTree followed by
// Unpack. Tree shapes are fully deterministic: equal frequencies are broken
// by symbol value, and leaves win ties against internal nodes.
package huffman
