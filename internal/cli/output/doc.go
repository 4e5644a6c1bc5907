// Package output renders vitals-cli results as a table, JSON or YAML.
//
// Table output turns structs into FIELD/VALUE rows and slices of structs
// into one row per element, using json tag names as headers. Fields
// tagged `table:"wide"` are shown only with --wide; `table:"-"` hides a
// field.
package output
