package domain

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing message attached to the outcome of an operation.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Info(msg string) *Notice    { return &Notice{Level: LevelInfo, Message: msg} }
func Success(msg string) *Notice { return &Notice{Level: LevelSuccess, Message: msg} }
func Warning(msg string) *Notice { return &Notice{Level: LevelWarning, Message: msg} }
func Failure(msg string) *Notice { return &Notice{Level: LevelError, Message: msg} }
