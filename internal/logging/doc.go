// Package logging provides file-based logging with size-based rotation for
// the search engine. Setup writes JSON log records to a rotating file
// (DefaultConfig: ~/.githound/logs/engine.log at info level) and, when
// WriteToStderr is set, to stderr as well. DebugConfig lowers the level to
// debug.
package logging
