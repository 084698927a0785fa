package scan

import "os"

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func mkSubdir(path string) error {
	return os.Mkdir(path, 0o755)
}
