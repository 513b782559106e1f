// Package metadata reduces raw extractor entries to the fixed archive schema.
//
// Normalization is total: unavailable entries and entries lacking any
// required field are dropped, never reported as errors and never partially
// emitted. Surviving records keep provider order.
package metadata
