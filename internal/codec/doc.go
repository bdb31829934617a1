// Package codec converts circuits to and from their durable document form.
//
// A Registry maps the class names found in documents to element kinds. Each
// stored node is tagged with "__class" and, since every node carries a
// position, with a "__mixin" marker {target: <element class>, source:
// "Positionable"}. Deserialize rebuilds the concrete kind from the marker;
// entries naming an unknown class or mixin are dropped and reported, not
// treated as errors.
//
// JSONCodec and YAMLCodec move documents over streams. JSON is the storage
// format; YAML is meant for circuit files written by hand.
package codec
