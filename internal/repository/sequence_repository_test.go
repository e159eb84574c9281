package repository_test

import (
	"testing"

	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestFormatID(t *testing.T) {
	assert.Equal(t, "ord00001", repo.FormatID("ord", 1))
	assert.Equal(t, "prd00042", repo.FormatID("prd", 42))
	assert.Equal(t, "stt99999", repo.FormatID("stt", 99999))
	// 99999を超えたら自然に桁が増える
	assert.Equal(t, "msg100000", repo.FormatID("msg", 100000))
}

func TestSequencePrefix(t *testing.T) {
	cases := map[string]string{
		repo.SeqOrder:   "ord",
		repo.SeqProduct: "prd",
		repo.SeqStatus:  "stt",
		repo.SeqMessage: "msg",
	}
	for domain, want := range cases {
		p, ok := repo.SequencePrefix(domain)
		assert.True(t, ok)
		assert.Equal(t, want, p)
	}

	_, ok := repo.SequencePrefix("unknown")
	assert.False(t, ok)
}
