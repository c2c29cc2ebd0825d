package logger

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Silence отключает вывод. Используется в тестах.
func Silence() {
	Log.SetOutput(io.Discard)
}

// WithRequest добавляет к записи поля текущего запроса.
func WithRequest(c *gin.Context) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}
	if userID, ok := c.Get("userID"); ok {
		fields["user_id"] = userID
	}
	return Log.WithFields(fields)
}
