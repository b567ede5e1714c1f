package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestCommandsNeedPostgres(t *testing.T) {
	cfg := &Config{Storage: StorageMemory}
	log, _ := test.NewNullLogger()

	assert.Error(t, AwardExpired(context.Background(), cfg, log))
	assert.Error(t, Migrate(context.Background(), cfg, log))
}
