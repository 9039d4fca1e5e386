package model

type Message struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

func Critical(code, message string) Message {
	return Message{Level: LevelCritical, Code: code, Message: message}
}

func Warning(code, message string) Message {
	return Message{Level: LevelWarning, Code: code, Message: message}
}
