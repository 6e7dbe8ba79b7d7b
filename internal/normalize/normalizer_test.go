package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

type stubExtractor struct {
	spec        *entity.NormalizedItemSpec
	err         error
	gotDesc     string
	gotGroupCtx string
}

func (s *stubExtractor) ExtractItemSpec(_ context.Context, description, groupContext string) (*entity.NormalizedItemSpec, error) {
	s.gotDesc, s.gotGroupCtx = description, groupContext
	return s.spec, s.err
}

func TestNormalize_ClampsAndCanonicalizes(t *testing.T) {
	stub := &stubExtractor{spec: &entity.NormalizedItemSpec{
		Category:   "Câmera IP",
		Format:     " Bullet ",
		Confidence: 1.5,
		TechnicalAttributes: entity.TechnicalAttributes{
			LensType:      utils.Ptr("Varifocal motorizada"),
			IRRangeMeters: utils.Ptr(-5.0),
			PortCount:     utils.Ptr(-1),
		},
	}}
	n := NewNormalizer(stub, nil)

	spec, err := n.Normalize(context.Background(), "  Câmera bullet varifocal  ", " Lote 2 ")
	require.NoError(t, err)

	assert.Equal(t, "Câmera bullet varifocal", stub.gotDesc)
	assert.Equal(t, "Lote 2", stub.gotGroupCtx)
	assert.Equal(t, "camera", spec.Category)
	assert.Equal(t, "bullet", spec.Format)
	assert.Equal(t, 1.0, spec.Confidence)
	assert.Nil(t, spec.IRRangeMeters)
	assert.Nil(t, spec.PortCount)
	require.NotNil(t, spec.Varifocal)
	assert.True(t, *spec.Varifocal)
	assert.Nil(t, spec.PTZ)
}

func TestNormalize_EmptyDescription(t *testing.T) {
	n := NewNormalizer(&stubExtractor{}, nil)
	_, err := n.Normalize(context.Background(), "   ", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNormalize_ExtractorError(t *testing.T) {
	cause := &common.ProviderError{Provider: "all", Cause: errors.New("boom")}
	n := NewNormalizer(&stubExtractor{err: cause}, nil)
	_, err := n.Normalize(context.Background(), "HD 4TB", "")
	assert.ErrorIs(t, err, common.ErrProvider)
}
