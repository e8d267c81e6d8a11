package config

import "os"

func IsDebug() bool {
	return os.Getenv("MOMO_DEBUG") == "1"
}
