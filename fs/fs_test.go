package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	tests := []struct {
		dir  string
		want []string
	}{
		{
			dir:  "assets/templates/email",
			want: []string{"_base.gohtml", "_base.txt", "task_reminder.gohtml", "task_reminder.txt"},
		},
		{
			dir:  "migrations",
			want: []string{"00001_create_courses.sql", "00002_create_grade_items.sql", "00003_create_tasks.sql"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			entries, err := fs.ReadDir(FS, tt.dir)
			require.NoError(t, err)

			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
