package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageURL(t *testing.T) {
	tests := []struct {
		stage string
		url   string
		want  string
	}{
		{stage: "local", url: "/x", want: "/x"},
		{stage: "local", url: "/checkout", want: "/checkout"},
		{stage: "prod", url: "/checkout", want: "/prod/checkout"},
		{stage: "internal", url: "/api/receipts", want: "/internal/api/receipts"},
		{stage: "prod", url: "", want: "/prod"},
		{stage: "", url: "/x", want: "//x"},
	}

	for _, tt := range tests {
		t.Run(tt.stage+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, StageURL(tt.stage, tt.url))
		})
	}
}
