// Package logger provides adapters for popular logger libraries to work with bptdb's Logger interface.
//
// The adapters allow you to use your existing logger with bptdb without writing boilerplate.
// Note that the standard library's slog.Logger already implements bptdb.Logger directly.
//
// Example with zap:
//
//	import (
//	    "github.com/alexhholmes/bptdb"
//	    "github.com/alexhholmes/bptdb/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    db, err := bptdb.Open("catalog.bptd", bptdb.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer db.Save("")
//	}
package logger
