package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewPicksFormatterAndLevel(t *testing.T) {
	dev := New("broadcast", "development", "")
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)

	prod := New("broadcast", "production", "warn")
	assert.Equal(t, logrus.WarnLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)

	bad := New("broadcast", "production", "loud")
	assert.Equal(t, logrus.InfoLevel, bad.GetLevel())
}
