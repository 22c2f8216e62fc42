// Package router implements the ordered, first-match-wins routing
// core of the edge server.
//
// A Table is compiled once from configuration: each rule pairs a
// Matcher (exact, prefix, or catchall) with a handler instance
// resolved from its configuration tag at build time. The Router walks
// the table in declaration order and dispatches the first match;
// earlier rules shadow later ones, and no longest-prefix reordering
// is performed. Reload replaces the whole table through an atomic
// pointer swap so concurrent requests always observe one consistent
// table.
package router
