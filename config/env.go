package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile 读取 .env 形式的文件并写入进程环境，已存在的变量不覆盖。
// 文件不存在不算错误，方便开发环境可有可无地带一个 .env。
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load env file %s: %w", p, err)
		}
	}
	return nil
}
