package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDo_Panics(t *testing.T) {
	err := Do(func() error {
		panic("boom")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestDo_NoPanic(t *testing.T) {
	err := Do(func() error {
		return nil
	})
	assert.NoError(t, err)
}

func TestRecover(t *testing.T) {
	var got error
	func() {
		defer Recover(func(err error) {
			got = err
		})
		panic("fake panic")
	}()
	assert.Error(t, got)
	assert.Contains(t, got.Error(), "fake panic")
}
