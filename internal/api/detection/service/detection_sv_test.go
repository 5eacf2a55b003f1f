package detectionService

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"GridVision/internal/api/detection"
	"GridVision/pkg/oracle"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (s *recordingStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "mem://" + name, nil
}

func newService(t *testing.T, o oracle.Oracle, store ResultStore) IDetectionService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	detector, err := spatial.New(o, logger)
	require.NoError(t, err)
	return NewDetectionService(logger, detector, store, utils.New(), t.TempDir())
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 90, 60))))
	return buf.Bytes()
}

func always(cells ...int) oracle.Oracle {
	return oracle.Func(func(ctx context.Context, req oracle.Request) (oracle.Response, error) {
		scores := make([]float64, len(cells))
		for i := range scores {
			scores[i] = 77
		}
		return oracle.Response{Cells: cells, ConfidenceScores: scores}, nil
	})
}

func TestDetectImage_StreamsStepsAndStoresResult(t *testing.T) {
	store := &recordingStore{}
	svc := newService(t, always(2), store)

	var steps []spatial.Step
	batch, err := svc.DetectImage(context.Background(), encodePNG(t), []string{"cup"}, func(s spatial.Step) {
		steps = append(steps, s)
	})
	require.NoError(t, err)

	require.Len(t, steps, 1)
	assert.True(t, steps[0].Final)
	assert.Equal(t, 1, batch.Localized)
	require.Len(t, batch.Detections, 1)
	assert.Equal(t, "high", batch.Detections[0].Confidence.String())
	require.Len(t, store.names, 1)
	assert.Equal(t, batch.ID+"_result.png", store.names[0])
	assert.Equal(t, "mem://"+store.names[0], batch.ImageURL)
}

func TestDetectImage_Errors(t *testing.T) {
	_, err := newService(t, always(), &recordingStore{}).DetectImage(context.Background(), []byte("junk"), []string{"a"}, nil)
	assert.ErrorIs(t, err, detection.ErrInvalidImage)

	_, err = newService(t, always(), &recordingStore{}).DetectImage(context.Background(), encodePNG(t), []string{" "}, nil)
	assert.ErrorIs(t, err, detection.ErrNoTargets)

	store := &recordingStore{}
	_, err = newService(t, always(1), store).DetectImage(context.Background(), make([]byte, utils.MaxUploadSize+1), []string{"a"}, nil)
	assert.ErrorIs(t, err, detection.ErrFileTooLarge)
	assert.Empty(t, store.names)

	_, err = newService(t, always(1), &recordingStore{err: errors.New("disk full")}).DetectImage(context.Background(), encodePNG(t), []string{"a"}, nil)
	assert.ErrorIs(t, err, detection.ErrStoreResult)
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(errors.Join(oracle.ErrUnavailable, context.DeadlineExceeded)), detection.ErrDetectionTimeout)
	assert.ErrorIs(t, classify(oracle.ErrUnavailable), detection.ErrOracleUnavailable)
	assert.ErrorIs(t, classify(errors.New("other")), detection.ErrInternalServerError)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	url, err := NewLocalStore(filepath.Join(dir, "uploads"), "/uploads").Save(context.Background(), "a_result.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a_result.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "a_result.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

type fakeS3 struct {
	uploaded   map[string][]byte
	presignErr error
	deleted    []string
}

func (f *fakeS3) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	f.uploaded[key] = body
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func (f *fakeS3) PresignUrl(fileUrl string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fileUrl + "?X-Amz-Signature=abc", nil
}

func (f *fakeS3) DeleteFile(fileName string) error {
	f.deleted = append(f.deleted, fileName)
	return nil
}

func TestS3Store(t *testing.T) {
	t.Run("returns a presigned url", func(t *testing.T) {
		client := &fakeS3{uploaded: map[string][]byte{}}
		url, err := NewResultStore(client, t.TempDir()).Save(context.Background(), "a_result.png", []byte("data"), "image/png")
		require.NoError(t, err)

		assert.Equal(t, "https://bucket.s3.amazonaws.com/results/a_result.png?X-Amz-Signature=abc", url)
		assert.Equal(t, []byte("data"), client.uploaded["results/a_result.png"])
		assert.Empty(t, client.deleted)
	})

	t.Run("removes the object when presigning fails", func(t *testing.T) {
		client := &fakeS3{uploaded: map[string][]byte{}, presignErr: errors.New("head object: forbidden")}
		_, err := NewS3Store(client, "results").Save(context.Background(), "b_result.png", []byte("data"), "image/png")
		assert.Error(t, err)
		assert.Equal(t, []string{"results/b_result.png"}, client.deleted)
	})
}
