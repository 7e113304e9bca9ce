// Package extract fetches the source archive, unpacks it and rewrites the
// artist relation dictionary into line-delimited records.
package extract
