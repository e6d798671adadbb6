// Package logx is a thin structured-logging facade over zerolog.
//
// It exposes an slog-like field API, a console writer for humans and an
// optional JSON file sink, and a Service that can hot-swap level/outputs
// when the config file is reloaded.
package logx
