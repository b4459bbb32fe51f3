// Package internaldefs holds the metric names and bucket boundaries shared by
// the Prometheus and OTel exporters.
//
// Both exporters read these definitions, so a rename here changes every
// exporter at once. The package performs no I/O.
package internaldefs
