package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOpeningsPrefersResumeMatches(t *testing.T) {
	jobs := []string{"React Developer", "Go Developer"}
	ranked, matched := rankOpenings("Five years as a Go developer, shipped Go microservices.", jobs)
	assert.True(t, matched)
	assert.Equal(t, []string{"Go Developer", "React Developer"}, ranked)
}

func TestRankOpeningsDropsUnrelatedRoles(t *testing.T) {
	ranked, matched := rankOpenings("Senior Python engineer with Django experience.", []string{"Go Developer", "Python Engineer"})
	assert.True(t, matched)
	assert.Equal(t, []string{"Python Engineer"}, ranked)
}

func TestRankOpeningsFallsBackToFullList(t *testing.T) {
	jobs := []string{"Go Developer", "React Developer"}
	ranked, matched := rankOpenings("Head chef, ten years in fine dining.", jobs)
	assert.False(t, matched)
	assert.Equal(t, jobs, ranked)
}

func TestRankOpeningsStripsPunctuation(t *testing.T) {
	ranked, matched := rankOpenings("Skills: React, TypeScript.", []string{"React Developer"})
	assert.True(t, matched)
	assert.Equal(t, []string{"React Developer"}, ranked)
}
