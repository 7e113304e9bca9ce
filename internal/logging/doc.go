// Package logging provides concrete implementations of the trackpipe.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed messages to stderr
//   - FileLogger: Writes logrus text records to a stage log file
//   - Multi: Fans every message out to several loggers
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
