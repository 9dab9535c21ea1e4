package signals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	for _, s := range All() {
		assert.True(t, ValidName(string(s)))
	}
	assert.False(t, ValidName("expression"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("Functionality"), "names are case-sensitive")
}

func TestReadingConstructors(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := OK(0.8, "essentiality_model")
		assert.Equal(t, StatusOK, r.Status)
		assert.InDelta(t, 0.8, r.Value, 1e-9)
		assert.Empty(t, r.Err)
	})

	t.Run("degraded carries the neutral value", func(t *testing.T) {
		r := Degraded(errors.New("connection refused"))
		assert.Equal(t, StatusDegraded, r.Status)
		assert.Zero(t, r.Value)
		assert.Equal(t, "connection refused", r.Err)
	})

	t.Run("skipped records the reason", func(t *testing.T) {
		r := Skipped("no genomic coordinates")
		assert.Equal(t, StatusSkipped, r.Status)
		assert.Zero(t, r.Value)
		assert.Equal(t, "no genomic coordinates", r.Err)
	})
}

func TestReadingStub(t *testing.T) {
	assert.True(t, OK(0.9, "deterministic_fallback").Stub())
	assert.False(t, OK(0.9, "atacnet_v4").Stub())
	assert.False(t, Degraded(nil).Stub())
}

func TestBundleGet(t *testing.T) {
	b := Bundle{
		Functionality: OK(0.1, "functionality_model"),
		Essentiality:  OK(0.2, "essentiality_model"),
		Regulatory:    OK(0.3, "regulatory_model"),
		Chromatin:     OK(0.4, "atacnet_v4"),
	}
	assert.InDelta(t, 0.1, b.Get(SignalFunctionality).Value, 1e-9)
	assert.InDelta(t, 0.2, b.Get(SignalEssentiality).Value, 1e-9)
	assert.InDelta(t, 0.3, b.Get(SignalRegulatory).Value, 1e-9)
	assert.InDelta(t, 0.4, b.Get(SignalChromatin).Value, 1e-9)
	assert.Zero(t, b.Get(Signal("unknown")))
}

func TestBundleAllZero(t *testing.T) {
	assert.True(t, Bundle{}.AllZero())

	degraded := Bundle{
		Functionality: Degraded(errors.New("down")),
		Essentiality:  Degraded(errors.New("down")),
		Regulatory:    Skipped("no genomic coordinates"),
		Chromatin:     Skipped("no genomic coordinates"),
	}
	assert.True(t, degraded.AllZero(), "degraded and skipped readings carry zero")

	one := degraded
	one.Essentiality = OK(0.8, "essentiality_model")
	assert.False(t, one.AllZero())
}
