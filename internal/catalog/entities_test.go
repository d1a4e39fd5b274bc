package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionCodes(t *testing.T) {
	batch := []string{"AAA-111", "BBB-222", "AAA-111", "CCC-333", "", "  "}
	inStore := map[string]bool{"CCC-333": true}

	result := PartitionCodes(batch, inStore)

	assert.Equal(t, []string{"AAA-111", "BBB-222"}, result.ValidCodes)
	assert.Equal(t, []string{"AAA-111"}, result.Duplicates)
	assert.Equal(t, []string{"CCC-333"}, result.SystemDuplicates)

	// Cada entrada não vazia cai em exatamente um grupo.
	total := len(result.ValidCodes) + len(result.Duplicates) + len(result.SystemDuplicates)
	assert.Equal(t, 4, total)
}

func TestPartitionCodesTrimsEntries(t *testing.T) {
	batch := []string{"  AAA-111  ", "AAA-111"}

	result := PartitionCodes(batch, nil)

	assert.Equal(t, []string{"AAA-111"}, result.ValidCodes)
	assert.Equal(t, []string{"AAA-111"}, result.Duplicates)
}

func TestPartitionCodesResubmission(t *testing.T) {
	batch := []string{"AAA-111", "BBB-222"}

	first := PartitionCodes(batch, map[string]bool{})
	assert.Len(t, first.ValidCodes, 2)

	// Simula o reenvio do mesmo lote depois da ingestão: tudo vira
	// duplicata de sistema e nada é válido.
	inStore := make(map[string]bool)
	for _, code := range first.ValidCodes {
		inStore[code] = true
	}
	second := PartitionCodes(batch, inStore)

	assert.Empty(t, second.ValidCodes)
	assert.Empty(t, second.Duplicates)
	assert.Equal(t, []string{"AAA-111", "BBB-222"}, second.SystemDuplicates)
}

func TestPartitionCodesEmptyBatch(t *testing.T) {
	result := PartitionCodes(nil, nil)

	assert.Empty(t, result.ValidCodes)
	assert.Empty(t, result.Duplicates)
	assert.Empty(t, result.SystemDuplicates)
}
