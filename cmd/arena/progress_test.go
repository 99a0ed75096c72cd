package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressBar(&buf, 4)

	p.Advance()
	assert.Contains(t, buf.String(), "1/4")
	assert.Contains(t, buf.String(), "25%")
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))

	for range 3 {
		p.Advance()
	}
	assert.Contains(t, buf.String(), "4/4")
	assert.Contains(t, buf.String(), "100%")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"), "finished bar ends the line")
}
