// SPDX-License-Identifier: MPL-2.0

package part

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	pluginElement   = "plugin"
	resourceElement = "resource"
	paramElement    = "param"
)

type (
	// Strategy is the deployment strategy of a loaded part, bound to the part's unit.
	Strategy interface {
		// Element returns the descriptor element the strategy was built from.
		Element() Element
	}

	// Instantiable is implemented by strategies that can produce a runtime value.
	Instantiable interface {
		Instantiate(ctx context.Context) (any, error)
	}

	// BuildContext carries everything a strategy handler needs.
	BuildContext struct {
		Info    Info
		Unit    *Unit
		Element Element
	}

	// StrategyHandler builds the strategy of a part from its strategy element.
	StrategyHandler interface {
		Build(ctx context.Context, bc BuildContext) (Strategy, error)
	}

	// StrategyHandlerFunc adapts a function to StrategyHandler.
	StrategyHandlerFunc func(ctx context.Context, bc BuildContext) (Strategy, error)

	// Param is a plugin parameter.
	Param struct {
		Key   string
		Value string
	}

	// Params is an ordered parameter list.
	Params []Param

	// PluginFactory constructs the value of a plugin part.
	PluginFactory func(ctx context.Context, unit *Unit, params Params) (any, error)

	// PluginStrategy instantiates a registered factory named by its class.
	PluginStrategy struct {
		Class   string
		Params  Params
		unit    *Unit
		element Element
		factory PluginFactory
	}

	// ResourceStrategy names a resource found on the part classpath.
	ResourceStrategy struct {
		URN     string
		Path    string
		unit    *Unit
		element Element
	}

	// builtinHandler handles the plugin and resource elements of Namespace.
	builtinHandler struct {
		plugins map[string]PluginFactory
	}
)

// Build calls f.
func (f StrategyHandlerFunc) Build(ctx context.Context, bc BuildContext) (Strategy, error) {
	return f(ctx, bc)
}

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Element returns the plugin element.
func (s *PluginStrategy) Element() Element { return s.element }

// Unit returns the unit the plugin is loaded into.
func (s *PluginStrategy) Unit() *Unit { return s.unit }

// Instantiate calls the factory registered for the plugin class.
func (s *PluginStrategy) Instantiate(ctx context.Context) (any, error) {
	if s.factory == nil {
		return nil, &UnknownPluginError{Class: s.Class}
	}
	v, err := s.factory(ctx, s.unit, s.Params)
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin %s: %w", s.Class, err)
	}
	return v, nil
}

// Element returns the resource element.
func (s *ResourceStrategy) Element() Element { return s.element }

// Unit returns the unit whose classpath holds the resource.
func (s *ResourceStrategy) Unit() *Unit { return s.unit }

// Open searches the unit classpath, tier by tier, for the resource path and
// opens the first match. Directories and zip archives are searched.
func (s *ResourceStrategy) Open(ctx context.Context) (io.ReadCloser, error) {
	files, err := s.unit.Files(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(s.Path, "/")
	for _, file := range files.All() {
		rc, err := openResource(file, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.URN, err)
		}
		return rc, nil
	}
	return nil, fmt.Errorf("resource %s: %s: %w", s.URN, s.Path, fs.ErrNotExist)
}

// Instantiate returns the resource content.
func (s *ResourceStrategy) Instantiate(ctx context.Context) (any, error) {
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func openResource(file, name string) (io.ReadCloser, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return os.Open(filepath.Join(file, filepath.FromSlash(name)))
	}

	archive, err := zip.OpenReader(file)
	if errors.Is(err, zip.ErrFormat) {
		return nil, fs.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			archive.Close()
			return nil, err
		}
		return &archiveFile{ReadCloser: rc, archive: archive}, nil
	}
	archive.Close()
	return nil, fs.ErrNotExist
}

type archiveFile struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (f *archiveFile) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// Build decodes a plugin or resource element.
func (h *builtinHandler) Build(_ context.Context, bc BuildContext) (Strategy, error) {
	el := bc.Element
	switch el.Name.Local {
	case pluginElement:
		class, ok := el.Attr("class")
		if !ok || class == "" {
			return nil, &DecodingError{Stage: StageStrategy, URI: bc.Info.URI, Element: pluginElement, Reason: "missing class attribute"}
		}
		params, err := decodeParams(bc.Info.URI, &el)
		if err != nil {
			return nil, err
		}
		return &PluginStrategy{
			Class:   class,
			Params:  params,
			unit:    bc.Unit,
			element: el,
			factory: h.plugins[class],
		}, nil
	case resourceElement:
		urn, _ := el.Attr("urn")
		p, ok := el.Attr("path")
		if !ok || p == "" {
			return nil, &DecodingError{Stage: StageStrategy, URI: bc.Info.URI, Element: resourceElement, Reason: "missing path attribute"}
		}
		return &ResourceStrategy{URN: urn, Path: p, unit: bc.Unit, element: el}, nil
	default:
		return nil, &DecodingError{
			Stage: StageStrategy, URI: bc.Info.URI, Element: el.Name.Local,
			Reason: fmt.Sprintf("not a recognized element of the %s namespace", Namespace),
		}
	}
}

// decodeParams reads <param key="k" value="v"/> or <param key="k">v</param>.
func decodeParams(uri string, el *Element) (Params, error) {
	var params Params
	for _, p := range el.ChildrenNamed(paramElement) {
		key, ok := p.Attr("key")
		if !ok || key == "" {
			return nil, &DecodingError{Stage: StageStrategy, URI: uri, Element: paramElement, Reason: "missing key attribute"}
		}
		value, ok := p.Attr("value")
		if !ok {
			value = p.Text
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params, nil
}
