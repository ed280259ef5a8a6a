// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/gogpu/webglsl/shader"
)

// Name is the glTF extension that carries WebGL shader programs.
const Name = "KHR_techniques_webgl"

const (
	extensionsKey = "extensions"
	shadersKey    = "shaders"
)

// Document is a decoded extension payload.
type Document struct {
	// root holds the top-level glTF object; nil for a bare payload.
	root map[string]json.RawMessage
	// extensions holds root["extensions"]; nil for a bare payload.
	extensions map[string]json.RawMessage
	// payload holds the extension object, shaders excluded.
	payload map[string]json.RawMessage
	// extras holds the fields of each decoded shader object that Program
	// does not model, such as "extras" and "extensions", by index.
	extras []map[string]json.RawMessage

	shaders *shader.Collection
}

// programKeys are the shader object fields decoded into shader.Program.
var programKeys = []string{"name", "type", "code", "uri"}

// Decode reads a glTF document or a bare KHR_techniques_webgl object.
// A payload without a shaders array is reported as missing input.
func Decode(r io.Reader) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("extension: decode: %w", err)
	}
	if top == nil {
		return nil, shader.MissingInputError(Name + " payload")
	}

	doc := &Document{}
	if raw, ok := top[extensionsKey]; ok {
		if err := json.Unmarshal(raw, &doc.extensions); err != nil {
			return nil, fmt.Errorf("extension: decode %s: %w", extensionsKey, err)
		}
		raw, ok := doc.extensions[Name]
		if !ok {
			return nil, shader.MissingInputError(Name + " extension")
		}
		if err := json.Unmarshal(raw, &doc.payload); err != nil {
			return nil, fmt.Errorf("extension: decode %s: %w", Name, err)
		}
		doc.root = top
	} else {
		doc.payload = top
	}

	raw, ok := doc.payload[shadersKey]
	if !ok {
		return nil, shader.MissingInputError(Name + " shaders")
	}
	doc.shaders = &shader.Collection{}
	if err := json.Unmarshal(raw, &doc.shaders.Shaders); err != nil {
		return nil, fmt.Errorf("extension: decode %s: %w", shadersKey, err)
	}
	if doc.shaders.Shaders == nil {
		return nil, shader.MissingInputError(Name + " shaders")
	}
	extras, err := decodeExtras(raw)
	if err != nil {
		return nil, err
	}
	doc.extras = extras
	delete(doc.payload, shadersKey)
	return doc, nil
}

// Bare reports whether the document was a bare extension object.
func (d *Document) Bare() bool {
	return d.root == nil
}

// Collection returns the shaders of d. Changes made through the returned
// collection are written by Encode. Shader fields that Program does not model
// are written back by position, so reordering the collection moves them to
// whichever shader takes the slot.
func (d *Document) Collection() *shader.Collection {
	return d.shaders
}

// Encode writes d in the shape it was decoded from, indented by two spaces.
func (d *Document) Encode(w io.Writer) error {
	out, err := d.marshal()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("extension: encode: %w", err)
	}
	return nil
}

func (d *Document) marshal() (map[string]json.RawMessage, error) {
	payload := maps.Clone(d.payload)
	shaders, err := d.marshalShaders()
	if err != nil {
		return nil, fmt.Errorf("extension: encode %s: %w", shadersKey, err)
	}
	payload[shadersKey] = shaders

	if d.root == nil {
		return payload, nil
	}

	ext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("extension: encode %s: %w", Name, err)
	}
	extensions := maps.Clone(d.extensions)
	extensions[Name] = ext

	exts, err := json.Marshal(extensions)
	if err != nil {
		return nil, fmt.Errorf("extension: encode %s: %w", extensionsKey, err)
	}
	root := maps.Clone(d.root)
	root[extensionsKey] = exts
	return root, nil
}

func decodeExtras(raw json.RawMessage) ([]map[string]json.RawMessage, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("extension: decode %s: %w", shadersKey, err)
	}
	extras := make([]map[string]json.RawMessage, len(objects))
	for i, obj := range objects {
		for _, k := range programKeys {
			delete(obj, k)
		}
		if len(obj) > 0 {
			extras[i] = obj
		}
	}
	return extras, nil
}

func (d *Document) marshalShaders() (json.RawMessage, error) {
	out := make([]json.RawMessage, len(d.shaders.Shaders))
	for i, p := range d.shaders.Shaders {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("shader %d: %w", i, err)
		}
		if p != nil && i < len(d.extras) && d.extras[i] != nil {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(data, &fields); err != nil {
				return nil, fmt.Errorf("shader %d: %w", i, err)
			}
			merged := maps.Clone(d.extras[i])
			maps.Copy(merged, fields)
			if data, err = json.Marshal(merged); err != nil {
				return nil, fmt.Errorf("shader %d: %w", i, err)
			}
		}
		out[i] = data
	}
	return json.Marshal(out)
}
