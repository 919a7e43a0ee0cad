// Package prop provides the property value model for graph nodes.
//
// Node properties are stored as a canonical JSON object. Each value is one of
// a closed set of types: Null, String, Int, Number, Bool, Array, Object.
// Code that reads a property gets a Value and dispatches on the concrete type.
//
// Key constraints:
//   - Numbers that are not int64 are kept as Number, holding the JSON text
//   - Null is accepted when decoding but never written back
//   - Object keys are serialized in RFC 8785 order (UTF-16 code units)
//   - Strings are NFC normalized at the serialization boundary
//
// This package imports nothing internal.
package prop
