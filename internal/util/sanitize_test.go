package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"Alice Node", "alice-node"},
		{"backend.1", "backend-1"},
		{"my/net", "my-net"},
		{"héllo!", "hllo"},
		{"--x--", "x"},
		{"", "node"},
		{"***", "node"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(tt.in), "input %q", tt.in)
	}
}
