package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// whatsmeowLogger adapts zap to the whatsmeow logging interface.
type whatsmeowLogger struct {
	log    *zap.Logger
	module string
	debug  bool
}

// NewWhatsmeowLogger returns a whatsmeow logger tagged with module. Debug
// output is only forwarded when level is "DEBUG".
func NewWhatsmeowLogger(l *Logger, module string, level string) waLog.Logger {
	return &whatsmeowLogger{
		log:    l.Log.With(zap.String("module", module)),
		module: module,
		debug:  strings.EqualFold(level, "DEBUG"),
	}
}

func (w *whatsmeowLogger) Warnf(msg string, args ...interface{}) {
	w.log.Warn(fmt.Sprintf(msg, args...))
}

func (w *whatsmeowLogger) Errorf(msg string, args ...interface{}) {
	w.log.Error(fmt.Sprintf(msg, args...))
}

func (w *whatsmeowLogger) Infof(msg string, args ...interface{}) {
	w.log.Info(fmt.Sprintf(msg, args...))
}

func (w *whatsmeowLogger) Debugf(msg string, args ...interface{}) {
	if w.debug {
		w.log.Debug(fmt.Sprintf(msg, args...))
	}
}

func (w *whatsmeowLogger) Sub(module string) waLog.Logger {
	sub := w.module + "/" + module
	return &whatsmeowLogger{
		log:    w.log.With(zap.String("submodule", sub)),
		module: sub,
		debug:  w.debug,
	}
}
