package files_manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photo2pdf/contracts"
	"photo2pdf/raster"
)

var (
	ErrNoImages   = errors.New("no images found")
	ErrNoInputs   = errors.New("no inputs given")
	ErrBadOutName = errors.New("invalid output file name")
)

// CollectImages lists the supported images directly inside dir, sorted by
// name. Subdirectories and AppleDouble "._" files are skipped.
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "._") {
			continue
		}
		if raster.IsSupportedExt(entry.Name()) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// ResolveInputs expands args, files and directories alike, into image
// inputs in argument order.
func ResolveInputs(args []string) ([]contracts.ImageInput, error) {
	if len(args) == 0 {
		return nil, ErrNoInputs
	}
	var inputs []contracts.ImageInput
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, imageInput(arg))
			continue
		}
		paths, err := CollectImages(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, p := range paths {
			inputs = append(inputs, imageInput(p))
		}
	}
	if len(inputs) == 0 {
		return nil, ErrNoImages
	}
	return inputs, nil
}

func imageInput(path string) contracts.ImageInput {
	return contracts.ImageInput{URI: path, FileName: filepath.Base(path)}
}

// SafeFileName replaces anything outside [A-Za-z0-9_.-] with an underscore.
func SafeFileName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// WriteFileAtomic writes data next to path with a .tmp suffix and renames it
// into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == ".." {
		return fmt.Errorf("%w: %q", ErrBadOutName, path)
	}
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
