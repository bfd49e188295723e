package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParams(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PartialConfig(t *testing.T) {
	path := writeParams(t, `{"tolerance": 1e-6, "circle_slices": 32, "convert_to_citygml2": true}`)
	p, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, p.Tolerance)
	assert.Equal(t, 1e-6, *p.Tolerance)
	assert.Equal(t, 32, *p.CircleSlices)
	assert.True(t, *p.ConvertToCityGML2)
	assert.Nil(t, p.DiscretizationStepSize, "omitted fields stay nil")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"negative tolerance", `{"tolerance": -1}`},
		{"zero step", `{"discretization_step_size": 0}`},
		{"few slices", `{"circle_slices": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeParams(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Offset(t *testing.T) {
	p, err := Load(writeParams(t, `{"offset": [100, 200, 5]}`))
	require.NoError(t, err)
	require.NotNil(t, p.Offset)
	assert.Equal(t, [3]float64{100, 200, 5}, *p.Offset)
}
