package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/shelf/internal/logger"
	"gotest.tools/v3/assert"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shelf.log")

	log, err := logger.New("debug", false, path)
	assert.NilError(t, err)

	log.Info("bookmark created", logger.String("id", "b1"), logger.Int("count", 2))
	log.With(logger.String("op", "bulk_delete")).Debugf("deleted %d", 3)
	_ = log.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	out := string(data)
	assert.Assert(t, strings.Contains(out, `"msg":"bookmark created"`), out)
	assert.Assert(t, strings.Contains(out, `"id":"b1"`), out)
	assert.Assert(t, strings.Contains(out, `"op":"bulk_delete"`), out)
	assert.Assert(t, strings.Contains(out, "deleted 3"), out)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.log")

	log, err := logger.New("warn", false, path)
	assert.NilError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(string(data), "hidden"))
	assert.Assert(t, strings.Contains(string(data), "shown"))
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.Assert(t, logger.ValidLevel(lvl), lvl)
	}
	assert.Assert(t, !logger.ValidLevel("verbose"))
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.Error("nothing happens")
	assert.NilError(t, log.Sync())
}
