package logs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

var Output *os.File

// Dir is ~/.dbquery, falling back to the working directory if there's no home directory.
func Dir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".dbquery"
	}
	return filepath.Join(home, ".dbquery")
}

// InitializeFileLogger redirects the log package to dir/logs.txt.
func InitializeFileLogger(dir string) {
	path := filepath.Join(dir, "logs.txt")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("couldn't create %s directory: %s", dir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("couldn't create logs file: %s", err)
	}
	Output = f
	log.SetOutput(Output)
}

func CloseLogger() {
	if Output == nil {
		return
	}
	log.SetOutput(os.Stderr)
	Output.Close()
	Output = nil
}
