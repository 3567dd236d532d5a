// Package mappings loads the symbol tables that translate obfuscated
// identifiers into human-readable names.
//
// Two source formats are read:
//
//   - CSV tables (fields.csv, methods.csv, params.csv). The header must name
//     exactly one key column ("searge" or "param") and exactly one "name"
//     column. Every later row contributes one key/name pair. Tables loaded
//     later overwrite earlier entries for the same key.
//   - SRG/TSRG class mappings, from which only the obfuscated class names are
//     taken (see ReadClassSet). Member lines start with a tab and are skipped.
//
// Rows are split on plain commas with no quote handling. The key and name
// columns always precede the free-text description column, so commas in the
// description never shift them.
package mappings
