package utils

import "os"

// EnsureDirs：启动期创建数据目录；已存在时静默通过
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
