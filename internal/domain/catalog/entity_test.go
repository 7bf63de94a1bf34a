package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

func TestFromHCCC(t *testing.T) {
	g := FromHCCC(hccc.Game{ID: "g1", Name: "Pinball", Status: "ACTIVE"})
	assert.Equal(t, StatusActive, g.Status)
	assert.NotNil(t, g.Locations)
	assert.Empty(t, g.TokenPackages)
	assert.True(t, g.IsActive())
	assert.True(t, Game{}.IsActive())
	assert.False(t, Game{Status: StatusInactive}.IsActive())
}

func TestPackages(t *testing.T) {
	g := Game{
		TokenPackages: []TokenPackage{
			{Tokens: 100, Price: price("18")},
			{Tokens: 20, Price: price("5")},
			{Tokens: 50, Price: price("10")},
		},
	}

	p, ok := g.CheapestPackage()
	assert.True(t, ok)
	assert.Equal(t, 20, p.Tokens)

	_, ok = Game{}.CheapestPackage()
	assert.False(t, ok)
}
