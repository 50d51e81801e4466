package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCIDR(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare ip gets /32", in: "203.0.113.7", want: "203.0.113.7/32"},
		{name: "explicit mask kept", in: "203.0.113.0/24", want: "203.0.113.0/24"},
		{name: "whitespace trimmed", in: "  198.51.100.1 ", want: "198.51.100.1/32"},
		{name: "empty", in: "", wantErr: true},
		{name: "not an address", in: "office-network", wantErr: true},
		{name: "bad mask", in: "203.0.113.7/99", wantErr: true},
		{name: "mask without address", in: "/32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCIDR(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidParameter(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCreate(t *testing.T) {
	t.Run("requires key name", func(t *testing.T) {
		_, err := validateCreate(Parameters{MyIP: "203.0.113.7"})
		require.Error(t, err)
		assert.True(t, IsInvalidParameter(err))
	})

	t.Run("requires valid cidr", func(t *testing.T) {
		_, err := validateCreate(Parameters{MyIP: "nope", KeyName: "dev-key"})
		require.Error(t, err)
		assert.True(t, IsInvalidParameter(err))
	})

	t.Run("normalizes my ip", func(t *testing.T) {
		p, err := validateCreate(Parameters{MyIP: "203.0.113.7", KeyName: " dev-key "})
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.7/32", p.MyIP)
		assert.Equal(t, "dev-key", p.KeyName)
	})
}

func TestCreateParameters(t *testing.T) {
	t.Run("optional parameters omitted", func(t *testing.T) {
		params := createParameters(Parameters{MyIP: "203.0.113.7/32", KeyName: "dev-key"})
		require.Len(t, params, 2)
		assert.Equal(t, TemplateParameter{Key: "MyIpAddress", Value: "203.0.113.7/32"}, params[0])
		assert.Equal(t, TemplateParameter{Key: "KeyName", Value: "dev-key"}, params[1])
	})

	t.Run("optional parameters bound when supplied", func(t *testing.T) {
		params := createParameters(Parameters{
			MyIP:         "203.0.113.7/32",
			KeyName:      "dev-key",
			InstanceType: "g4dn.2xlarge",
			VolumeSize:   200,
		})
		require.Len(t, params, 4)
		assert.Equal(t, TemplateParameter{Key: "InstanceType", Value: "g4dn.2xlarge"}, params[2])
		assert.Equal(t, TemplateParameter{Key: "VolumeSize", Value: "200"}, params[3])
	})
}

func TestUpdateParameters(t *testing.T) {
	t.Run("unsupplied values use previous", func(t *testing.T) {
		params, err := updateParameters(Parameters{MyIP: "198.51.100.1"})
		require.NoError(t, err)
		require.Len(t, params, 4)

		assert.Equal(t, TemplateParameter{Key: "MyIpAddress", Value: "198.51.100.1/32"}, params[0])
		assert.Equal(t, TemplateParameter{Key: "KeyName", UsePrevious: true}, params[1])
		assert.Equal(t, TemplateParameter{Key: "InstanceType", UsePrevious: true}, params[2])
		assert.Equal(t, TemplateParameter{Key: "VolumeSize", UsePrevious: true}, params[3])
	})

	t.Run("invalid cidr rejected", func(t *testing.T) {
		_, err := updateParameters(Parameters{MyIP: "not-a-cidr"})
		require.Error(t, err)
		assert.True(t, IsInvalidParameter(err))
	})

	t.Run("all supplied", func(t *testing.T) {
		params, err := updateParameters(Parameters{
			MyIP:         "198.51.100.1/32",
			KeyName:      "other-key",
			InstanceType: "g5.xlarge",
			VolumeSize:   150,
		})
		require.NoError(t, err)
		for _, p := range params {
			assert.False(t, p.UsePrevious, "parameter %s should carry a value", p.Key)
		}
	})
}
