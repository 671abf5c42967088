package config

import "os"

func IsDebug() bool {
	return os.Getenv("GSB_DEBUG") == "1"
}
