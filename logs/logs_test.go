package logs

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	InitializeFileLogger(dir)
	log.Printf("cache: couldn't get %s", "customers:last_changed")
	CloseLogger()
	CloseLogger()

	data, err := os.ReadFile(filepath.Join(dir, "logs.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache: couldn't get customers:last_changed")
}

func TestDir(t *testing.T) {
	assert.Equal(t, ".dbquery", filepath.Base(Dir()))
}
