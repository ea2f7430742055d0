// Package sceneio reads and writes scene files and turns them into running
// scenes.
package sceneio

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/plus3/tessera/ecs"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding of a SceneModel.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

var ErrUnknownFormat = eris.New("unknown scene file format")

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, eris.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// Decode reads a SceneModel.
func Decode(r io.Reader, f Format) (ecs.SceneModel, error) {
	var model ecs.SceneModel
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&model); err != nil {
			return model, eris.Wrap(err, "decode json scene")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&model); err != nil {
			return model, eris.Wrap(err, "decode yaml scene")
		}
	default:
		return model, eris.Wrapf(ErrUnknownFormat, "%d", f)
	}
	return model, nil
}

// DecodeFile reads a SceneModel from a .json, .yaml or .yml file.
func DecodeFile(path string) (ecs.SceneModel, error) {
	f, err := FormatOf(path)
	if err != nil {
		return ecs.SceneModel{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return ecs.SceneModel{}, eris.Wrapf(err, "open scene %s", path)
	}
	defer file.Close()

	return Decode(file, f)
}

// Encode writes a SceneModel in a human-editable layout.
func Encode(w io.Writer, model ecs.SceneModel, f Format) error {
	switch f {
	case FormatJSON:
		bz, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode json scene")
		}
		bz = append(bz, '\n')
		if _, err := w.Write(bz); err != nil {
			return eris.Wrap(err, "write scene")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(model); err != nil {
			return eris.Wrap(err, "encode yaml scene")
		}
		return enc.Close()
	default:
		return eris.Wrapf(ErrUnknownFormat, "%d", f)
	}
}

// EncodeFile writes a SceneModel to path in the format its extension names.
func EncodeFile(path string, model ecs.SceneModel) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create scene %s", path)
	}
	if err := Encode(file, model, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
