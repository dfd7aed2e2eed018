package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log глобальный логгер судьи. Заполняется в Init.
var Log = logrus.New()

// Options параметры логгера. Пустые поля берутся из окружения.
type Options struct {
	Level  string    // debug | info | warn | error
	Format string    // json | text
	Output io.Writer // по умолчанию stdout
}

// Init инициализирует глобальный логгер из LOG_LEVEL / LOG_FORMAT.
// Вызывается один раз при старте (main.go) или в TestMain.
func Init() {
	InitWith(Options{})
}

// InitWith инициализирует логгер с явными параметрами.
func InitWith(opts Options) {
	Log = logrus.New()

	// Уровень: явный > окружение > info
	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// "json" - для сбора логов матча, "text" - для локальной отладки
	format := opts.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	if opts.Output != nil {
		Log.SetOutput(opts.Output)
	} else {
		Log.SetOutput(os.Stdout)
	}
}

// Component возвращает логгер с полем component.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
