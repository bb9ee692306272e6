package observability

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 5
	logMaxAgeDays = 30
)

// Logger пишет структурированные записи: сообщение + пары ключ/значение.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger пишет в stdout и, если logPath задан, в файл с ротацией.
func NewLogger(logPath, logLevel string) *Logger {
	writers := []io.Writer{os.Stdout}
	if logPath != "" {
		// каталог создаёт lumberjack при первой записи
		writers = append(writers, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		})
	}
	return NewLoggerWithOutput(io.MultiWriter(writers...), logLevel)
}

// NewLoggerWithOutput пишет в w; используется NewLogger и тестами.
func NewLoggerWithOutput(w io.Writer, logLevel string) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetOutput(w)

	return &Logger{entry: logrus.NewEntry(l)}
}

// NewNopLogger ничего не пишет.
func NewNopLogger() *Logger {
	return NewLoggerWithOutput(io.Discard, "panic")
}

// With возвращает логгер с постоянными полями.
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(toFields(fields))}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Error(msg)
}

// toFields превращает "k1", v1, "k2", v2 в logrus.Fields.
// Нечётный хвост попадает под ключ "!BADKEY".
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields["!BADKEY"] = kv[i]
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}
