package useragent

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickEmptyPool(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	assert.Equal(t, "", Pick(rng, nil))
}

func TestPickDeterministicForSeed(t *testing.T) {
	agents := Default()
	a := Pick(rand.New(rand.NewPCG(7, 9)), agents)
	b := Pick(rand.New(rand.NewPCG(7, 9)), agents)
	assert.Equal(t, a, b)
	assert.Contains(t, agents, a)
}

func TestPickCoversPool(t *testing.T) {
	agents := []string{"a", "b", "c"}
	rng := rand.New(rand.NewPCG(3, 4))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[Pick(rng, agents)] = true
	}
	assert.Len(t, seen, 3)
}

func TestDefaultReturnsCopy(t *testing.T) {
	d := Default()
	d[0] = "mutated"
	assert.NotEqual(t, "mutated", Default()[0])
}
