package test

import (
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/onsi/ginkgo/v2"
)

var (
	Source = rand.NewSource(ginkgo.GinkgoRandomSeed())
	Faker  = faker.NewWithSeed(Source)
	Rand   = rand.New(Source)
)

// Reading returns a pointer to a random reading in [min, max).
func Reading(min, max float64) *float64 {
	v := min + Rand.Float64()*(max-min)
	return &v
}
