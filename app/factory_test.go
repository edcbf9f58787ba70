package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golens/internal/errors"
)

func TestNewExplainerDefaults(t *testing.T) {
	e, err := NewExplainer(DomainTabular, "")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.False(t, e.IsBuilt())
}

func TestNewExplainerExplicitAlgorithm(t *testing.T) {
	e, err := NewExplainer(DomainTabular, AlgorithmLIME)
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestNewExplainerReturnsFreshInstances(t *testing.T) {
	a, err := NewExplainer(DomainTabular, "")
	require.NoError(t, err)
	b, err := NewExplainer(DomainTabular, "")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestNewExplainerUnsupportedCombinations(t *testing.T) {
	_, err := NewExplainer("text", "")
	require.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))

	_, err = NewExplainer("text", AlgorithmLIME)
	require.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))

	_, err = NewExplainer(DomainTabular, "shap")
	require.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))
}
