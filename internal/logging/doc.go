// Package logging provides a unified logging interface for the coin-flip
// simulator. It abstracts the underlying logging implementation, allowing
// consistent structured logging across the driver, aggregator and exporters.
package logging
