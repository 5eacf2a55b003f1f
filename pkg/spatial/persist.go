package spatial

import (
	"fmt"

	"GridVision/pkg/utils"
)

// Persist writes the rendered result next to sourcePath as
// "<name>_detected<ext>" and returns the written path.
func Persist(r *Result, sourcePath string) (string, error) {
	path := utils.SiblingPath(sourcePath, "detected")
	if err := utils.SaveImage(path, r.Image); err != nil {
		return "", fmt.Errorf("save detection result: %w", err)
	}
	return path, nil
}

// PersistComposite writes the batch composite as "<name>_combined<ext>".
func PersistComposite(b *Batch, sourcePath string) (string, error) {
	path := utils.SiblingPath(sourcePath, "combined")
	if err := utils.SaveImage(path, b.Composite); err != nil {
		return "", fmt.Errorf("save combined result: %w", err)
	}
	return path, nil
}
