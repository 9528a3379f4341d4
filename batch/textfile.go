package batch

import "os"

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeTextFile(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}
