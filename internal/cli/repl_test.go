package cli

import (
	"io"
	"testing"

	"research-assistant-cli/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseSelection(t *testing.T) {
	sets := []entity.ReferenceSet{
		{Id: uuid.New(), Domain: "Medicine"},
		{Id: uuid.New(), Domain: "Law"},
		{Id: uuid.New(), Domain: "Quran"},
	}
	app := &App{render: &renderer{out: io.Discard}}

	tests := []struct {
		name      string
		selection string
		want      []uuid.UUID
	}{
		{"single", "2", []uuid.UUID{sets[1].Id}},
		{"multiple with spaces", "1, 3", []uuid.UUID{sets[0].Id, sets[2].Id}},
		{"out of range dropped", "0,4,2", []uuid.UUID{sets[1].Id}},
		{"garbage dropped", "a,b", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, app.parseSelection(tt.selection, sets))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "0123456789...", truncate("0123456789abcdef", 10))
}
