// Package calculators provides the concrete Calculator implementations, one per
// supported engineering standard.
//
// Every calculator declares its own required-field schema and fails fast with a
// calculation.ValidationError naming the offending field when the input mapping does
// not satisfy it. All numeric inputs and outputs carry their unit in the key name
// (kPa, MPa, mm, degrees C); calculators never coerce units implicitly.
package calculators
