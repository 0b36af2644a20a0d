package mocks

import (
	"github.com/lernquiz/lernquiz-go/internal/dependencies/random"
)

// MockRandom returns queued values instead of random ones
type MockRandom struct {
	IntnResults   []int
	StringResults []string

	intnIndex   int
	stringIndex int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates an empty MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued int, or 0 when the queue is empty
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	v := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return v
}

// String returns the next queued string, or "" when the queue is empty
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	v := r.StringResults[r.stringIndex]
	r.stringIndex++
	return v
}

// QueueIntn appends values to the Intn queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString appends values to the String queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}
