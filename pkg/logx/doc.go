// Package logx is a thin structured logging layer over zerolog.
//
// It exists so the rest of the bot can log through a stable Logger value
// while sinks (console, JSON file, chat forwarding) are swapped at runtime
// via Service.Apply on config reload.
package logx
