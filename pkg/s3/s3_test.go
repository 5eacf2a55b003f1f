package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyFromS3Url(t *testing.T) {
	assert.Equal(t, "results/abc_result.png", extractKeyFromS3Url("https://bucket.s3.amazonaws.com/results/abc_result.png"))
	assert.Equal(t, "plain-key.png", extractKeyFromS3Url("plain-key.png"))
}

func TestNew_RequiresBucket(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "")
	_, err := New()
	assert.Error(t, err)
}
