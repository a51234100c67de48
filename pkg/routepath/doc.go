// Package routepath implements the URL path forms used by localized rules:
// locale prefixing, locale-aware lowercasing, per-segment percent-encoding,
// and conversion of page parameter notation ([id], [...rest]) into rule
// notation (:id, *rest).
//
// It also cleans incoming request paths before they are looked up in a rule
// set.
package routepath
