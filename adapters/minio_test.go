package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterS3_Validation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterS3(r)

	tests := []struct {
		desc    string
		raw     string
		wantErr bool
	}{
		{"complete", `{"type":"s3","endpoint":"localhost:9000","bucket":"b","key":"k/v.bin"}`, false},
		{"missing endpoint", `{"type":"s3","bucket":"b","key":"k"}`, true},
		{"missing bucket", `{"type":"s3","endpoint":"localhost:9000","key":"k"}`, true},
		{"missing key", `{"type":"s3","endpoint":"localhost:9000","bucket":"b"}`, true},
		{"endpoint with scheme", `{"type":"s3","endpoint":"http://localhost:9000","bucket":"b","key":"k"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			src, err := r.NewSource([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &S3Source{}, src)
		})
	}
}

func TestS3Source_Entry(t *testing.T) {
	t.Parallel()

	rw := (&S3Source{}).Entry()
	assert.True(t, rw.Readable())
	assert.True(t, rw.Writable())

	ro := (&S3Source{ReadOnly: true}).Entry()
	assert.False(t, ro.Writable())
}
