// Package logger provides structured logging backed by zerolog.
//
// Loggers are scoped by component and enriched with invocation fields such as
// the participant name and work item ID.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("participant")
//	log.Info("request dispatched", logger.Fields(logger.FieldTarget, "127.0.0.1:3000"))
package logger
