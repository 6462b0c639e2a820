package config

import "os"

func IsDebug() bool {
	return os.Getenv("RTBOT_DEBUG") == "1"
}
