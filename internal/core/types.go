package core

const (
	AppName       = "gsb"
	AppTitle      = "Game Server Base"
	RepositoryURL = "https://github.com/sandevgo/gsb"
	Version       = "0.1.0"
)

// Hosts used by transports that have no network peer address.
const (
	ConsoleHost      = "console"
	TelegramHostPref = "tg:"
)
