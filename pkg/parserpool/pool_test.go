package parserpool_test

import (
	"sync"
	"testing"

	"github.com/gnames/gnbackbone/pkg/parserpool"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	pool := parserpool.NewPool(2)
	defer pool.Close()

	tests := []struct {
		msg, name, canonical string
		code                 nomcode.Code
	}{
		{"botanical", "Plantago major L.", "Plantago major", nomcode.Botanical},
		{"zoological", "Apis mellifera Linnaeus, 1758", "Apis mellifera",
			nomcode.Zoological},
		{"uninomial", "Tipula", "Tipula", nomcode.Zoological},
	}

	for _, v := range tests {
		res, err := pool.Parse(v.name, v.code)
		require.Nil(t, err, v.msg)
		require.True(t, res.Parsed, v.msg)
		assert.Equal(t, v.canonical, res.Canonical.Simple, v.msg)
	}
}

func TestParseUnsupportedCode(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	_, err := pool.Parse("Homo sapiens", nomcode.Bacterial)
	assert.NotNil(t, err)
}

func TestParseConcurrent(t *testing.T) {
	pool := parserpool.NewPool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pool.Parse("Homo sapiens Linnaeus", nomcode.Zoological)
			assert.Nil(t, err)
			assert.Equal(t, "Homo sapiens", res.Canonical.Simple)
		}()
	}
	wg.Wait()
}

func TestCodeByKingdom(t *testing.T) {
	assert.Equal(t, nomcode.Botanical, parserpool.CodeByKingdom("Plantae"))
	assert.Equal(t, nomcode.Botanical, parserpool.CodeByKingdom(" fungi"))
	assert.Equal(t, nomcode.Zoological, parserpool.CodeByKingdom("Animalia"))
	assert.Equal(t, nomcode.Zoological, parserpool.CodeByKingdom(""))
}
