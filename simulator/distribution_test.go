package simulator

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistTypeRoundTrip(t *testing.T) {
	for _, dt := range []DistType{DistUniform, DistNormal, DistExponential, DistFixed} {
		parsed, err := ParseDistType(dt.String())
		require.NoError(t, err)
		require.Equal(t, dt, parsed)
	}

	_, err := ParseDistType("gamma")
	require.Error(t, err)
}

func TestDistTypeJSON(t *testing.T) {
	data, err := json.Marshal(DistExponential)
	require.NoError(t, err)
	require.Equal(t, `"exponential"`, string(data))

	var dt DistType
	require.NoError(t, json.Unmarshal([]byte(`"normal"`), &dt))
	require.Equal(t, DistNormal, dt)

	require.Error(t, json.Unmarshal([]byte(`"bogus"`), &dt))
}

func TestDistSampleRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("uniform stays in bounds", func(t *testing.T) {
		d := Uniform(1.5, 4.0)
		for i := 0; i < 1000; i++ {
			v := d.Sample(rng)
			require.GreaterOrEqual(t, v, 1.5)
			require.Less(t, v, 4.0)
		}
	})

	t.Run("fixed always yields value", func(t *testing.T) {
		d := Fixed(2.5)
		for i := 0; i < 10; i++ {
			require.Equal(t, 2.5, d.Sample(rng))
		}
	})

	t.Run("normal never negative", func(t *testing.T) {
		d := Dist{Type: DistNormal, Mean: 0.1, StdDev: 5}
		for i := 0; i < 1000; i++ {
			require.GreaterOrEqual(t, d.Sample(rng), 0.0)
		}
	})

	t.Run("exponential never negative", func(t *testing.T) {
		d := Dist{Type: DistExponential, Mean: 2}
		for i := 0; i < 1000; i++ {
			require.GreaterOrEqual(t, d.Sample(rng), 0.0)
		}
	})

	t.Run("degenerate uniform yields min", func(t *testing.T) {
		d := Uniform(3, 3)
		require.Equal(t, 3.0, d.Sample(rng))
	})
}

func TestDistValidate(t *testing.T) {
	require.NoError(t, Uniform(0, 1).Validate())
	require.NoError(t, Fixed(0).Validate())

	require.Error(t, Uniform(2, 1).Validate())
	require.Error(t, Uniform(-1, 1).Validate())
	require.Error(t, Dist{Type: DistNormal, Mean: 1, StdDev: -1}.Validate())
	require.Error(t, Dist{Type: DistExponential, Mean: -2}.Validate())
	require.Error(t, Fixed(-1).Validate())
}
