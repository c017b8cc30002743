// Package calculation defines the pluggable standard-calculator core.
//
// Each supported engineering standard is encapsulated in one Calculator, and the set of
// supported standards is a closed list held by the Registry built at process start.
package calculation
