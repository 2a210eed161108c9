// Package urlutil holds the pure helpers the web pages use to build links:
// package URLs, heading anchors, search query strings, sample queries,
// Package URLs (purl) and version ordering. Nothing here performs I/O
// except LoadSampleQueries, which reads a YAML file.
package urlutil
