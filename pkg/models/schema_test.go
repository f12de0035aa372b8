package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name      string
		record    OutputRecord
		wantField string
	}{
		{name: "valid", record: OutputRecord{Topic: "events", Key: "cc-1", Value: "{}"}},
		{name: "missing topic", record: OutputRecord{Key: "cc-1"}, wantField: "topic"},
		{name: "missing key", record: OutputRecord{Topic: "events"}, wantField: "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}
