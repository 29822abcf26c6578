package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	t.Run("keeps first occurrence in order", func(t *testing.T) {
		in := []Track{
			{Name: "A", ID: "id1"},
			{Name: "B", ID: "id2"},
			{Name: "A (album version)", ID: "id1"},
			{Name: "C", ID: "id3"},
		}

		out := Dedupe(in)
		assert.Equal(t, []Track{
			{Name: "A", ID: "id1"},
			{Name: "B", ID: "id2"},
			{Name: "C", ID: "id3"},
		}, out)
	})

	t.Run("drops empty ids", func(t *testing.T) {
		out := Dedupe([]Track{{Name: "no link"}, {Name: "B", ID: "id2"}})
		assert.Len(t, out, 1)
		assert.Equal(t, "id2", out[0].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Dedupe(nil))
	})
}
