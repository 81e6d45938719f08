// Package logger provides a slog factory and typed attribute helpers so log
// keys stay consistent across services ("user_id", not "userId"/"uid"/"user").
package logger
