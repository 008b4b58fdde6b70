package filedrop_test

import (
	"testing"

	"github.com/skovric/filedrop"
	"github.com/stretchr/testify/assert"
)

func TestRecordPatch_IsEmpty(t *testing.T) {
	title := "t"

	assert.True(t, filedrop.RecordPatch{}.IsEmpty())
	assert.False(t, filedrop.RecordPatch{Title: &title}.IsEmpty())
	assert.False(t, filedrop.RecordPatch{Description: &title}.IsEmpty())
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tables  filedrop.Tables
		wantErr bool
	}{
		{name: "valid", tables: filedrop.Tables{Files: "files"}, wantErr: false},
		{name: "valid with underscore", tables: filedrop.Tables{Files: "tenant_files"}, wantErr: false},
		{name: "empty", tables: filedrop.Tables{}, wantErr: true},
		{name: "uppercase", tables: filedrop.Tables{Files: "Files"}, wantErr: true},
		{name: "leading digit", tables: filedrop.Tables{Files: "1files"}, wantErr: true},
		{name: "sql injection", tables: filedrop.Tables{Files: "files; drop table users"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tables.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
