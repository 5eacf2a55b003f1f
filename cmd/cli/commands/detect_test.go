package commands

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"GridVision/internal/config"
	"GridVision/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptModel func(prompt string) string

func (m promptModel) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error) {
	return m(prompt), nil
}

// withModel answers with cell 1 for prompts mentioning any of found.
func withModel(t *testing.T, found ...string) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	prev := newVisionModel
	newVisionModel = func(ctx context.Context, p config.Provider) (oracle.VisionModel, func(), error) {
		return promptModel(func(prompt string) string {
			for _, f := range found {
				if strings.Contains(prompt, "any part of: "+f+"\n") {
					return "```json\n{\"cells\": [1], \"confidence_scores\": [80]}\n```"
				}
			}
			return `{"cells": [], "confidence_scores": []}`
		}), func() {}, nil
	}
	t.Cleanup(func() { newVisionModel = prev })
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	return path
}

func run(args ...string) (string, error) {
	cmd := NewDetectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDetect_Single(t *testing.T) {
	withModel(t, "mug")
	path := writePNG(t, 300, 300)

	out, err := run(path, "mug")
	require.NoError(t, err)

	assert.Contains(t, out, "DETECTION RESULTS")
	assert.Contains(t, out, "Object: mug")
	assert.Contains(t, out, "Confidence: high (80.0%)")
	assert.Contains(t, out, "Bounding box: (0, 0, 100, 75)")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "photo_detected.png"))
}

func TestDetect_NotFoundIsNotAnError(t *testing.T) {
	withModel(t)
	path := writePNG(t, 300, 300)

	out, err := run(path, "unicorn")
	require.NoError(t, err)
	assert.Contains(t, out, "No object detected")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(path), "photo_detected.png"))
}

func TestDetect_Multi(t *testing.T) {
	withModel(t, "a", "c")
	path := writePNG(t, 300, 300)

	out, err := run(path, "--multi", "a", "b", "c", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "Localized 2 of 3 targets")
	assert.Less(t, strings.Index(out, "Object: a"), strings.Index(out, "Object: c"))
	assert.NotContains(t, out, "Object: b")
	assert.Contains(t, out, "[b] final")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "photo_combined.png"))
}

func TestDetect_Errors(t *testing.T) {
	withModel(t)
	path := writePNG(t, 50, 50)

	_, err := run(filepath.Join(t.TempDir(), "missing.png"), "cat")
	assert.ErrorContains(t, err, "image file not found")

	_, err = run(path, "cat", "dog")
	assert.ErrorContains(t, err, "--multi")

	_, err = run(path, "cat", "--rows", "0")
	assert.Error(t, err)

	_, err = run(path, "cat", "--provider", "nope")
	assert.Error(t, err)
}

func TestDetect_MissingCredentials(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := writePNG(t, 50, 50)

	_, err := run(path, "cat")
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}
