package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/sirupsen/logrus"
)

// NewLogger creates the relay logger from the log settings.
func NewLogger(cfg *config.LogSettings) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetLevel(parseLevel(cfg.LogLevel))

	var output io.Writer = os.Stdout
	if cfg.LogFile != "" {
		fileLogger := &timberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		output = io.MultiWriter(os.Stdout, fileLogger)
		// main logger isn't ready yet
		logrus.New().Infof("File logging enabled, writing to %s", cfg.LogFile)
	}
	logger.SetOutput(output)

	logger.SetFormatter(&SourceFormatter{
		Underlying: &logrus.TextFormatter{
			FullTimestamp: true,
			// our SourceFormatter adds the caller itself
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", ""
			},
			ForceColors: cfg.LogFile == "",
		},
		AddSpace: true,
	})
	logger.SetReportCaller(true)

	return logger, nil
}

func parseLevel(level *string) logrus.Level {
	if level == nil || *level == "" {
		return logrus.InfoLevel
	}
	lv, err := logrus.ParseLevel(strings.ToLower(*level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lv
}
