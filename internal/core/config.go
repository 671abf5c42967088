package core

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetWordListPath() string
	GetHistoryPath() string
	GetListenAddress() string
	GetEncoding() string
	GetCommandSeparator() string
	GetWelcome() string
	GetAdminHosts() []string
	IsTelnetEnabled() bool
	IsTelegramEnabled() bool
	IsConsoleEnabled() bool
}

type TelegramConfig interface {
	GetTelegramToken() string
}
