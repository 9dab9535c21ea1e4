package genomics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowAround(t *testing.T) {
	t.Run("symmetric window", func(t *testing.T) {
		r := WindowAround("chr7", 55191822, 150)
		assert.Equal(t, Region{Chrom: "chr7", Start: 55191672, End: 55191972}, r)
		assert.Equal(t, int64(301), r.Length())
	})

	t.Run("clamped at chromosome head", func(t *testing.T) {
		r := WindowAround("chr1", 40, 150)
		assert.Equal(t, int64(1), r.Start)
		assert.Equal(t, int64(190), r.End)
	})
}

func TestRegionString(t *testing.T) {
	r := Region{Chrom: "chr12", Start: 25245200, End: 25245500}
	assert.Equal(t, "chr12:25245200-25245500", r.String())
}
