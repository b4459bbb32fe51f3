// Package prometheus exposes cookiejwt metrics through client_golang.
//
// [PrometheusExporter] is a prometheus.Collector that reads
// [cookiejwt.JWTCookieStorage.MetricsSnapshot] on every scrape. Counter names
// are prefixed cookiejwt_*_total; decode and encode latency are histograms in
// seconds.
//
// The exporter registers itself in a private registry served by
// [PrometheusExporter.Handler]. It never touches the global registry.
package prometheus
