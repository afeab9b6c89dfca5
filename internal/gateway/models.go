package gateway

import (
	"context"
	"fmt"

	"llmserver/internal/catalog"
	"llmserver/internal/common/fsutil"
	"llmserver/pkg/types"
)

// ListModels lists ready and downloading artifacts of class c.
func (g *Gateway) ListModels(c catalog.Class) ([]types.ModelInfo, error) {
	out, err := g.reg.ListAvailable(c)
	if err != nil {
		return nil, upstreamError{msg: fmt.Sprintf("Failed to list %s models: %v", c, err), err: err}
	}
	return out, nil
}

// ListDownloadable returns the allow-listed catalog for class c.
func (g *Gateway) ListDownloadable(c catalog.Class) []types.DownloadableModel {
	return g.reg.ListDownloadable(c)
}

// Download accepts a background download of an allow-listed repository.
func (g *Gateway) Download(repo string) (types.DownloadResponse, error) {
	rec, err := g.downloads.Start(repo)
	if err != nil {
		if catalog.IsInvalidRepository(err) {
			return types.DownloadResponse{}, invalidInputError{msg: err.Error()}
		}
		return types.DownloadResponse{}, upstreamError{msg: err.Error(), err: err}
	}
	return types.DownloadResponse{
		Repository: repo,
		Status:     types.StatusDownloading,
		Path:       rec.Filename,
		Message:    "Model download started in background",
	}, nil
}

// Load makes the named model resident without running inference.
func (g *Gateway) Load(ctx context.Context, name string, c catalog.Class) (resp types.LoadResponse, err error) {
	_, span := startSpan(ctx, "gateway.Load", name, c)
	defer func() { endSpan(span, err) }()

	path, ok := g.reg.Resolve(name, c)
	if !ok {
		return resp, notFound(name, c)
	}
	resp = types.LoadResponse{Model: name, ModelType: string(c), ModelPath: path}
	m := g.manager(c)
	if m.IsLoaded(path) {
		resp.Status = "already_loaded"
		resp.Message = "Model is already loaded in memory"
		return resp, nil
	}
	if _, err = m.GetOrLoad(path); err != nil {
		err = runtimeError("Error loading model", err)
		return types.LoadResponse{}, err
	}
	resp.Status = "loaded"
	resp.Message = "Model loaded successfully into memory"
	return resp, nil
}

// Unload releases the named model. Unloading a model that is not resident
// succeeds with status not_loaded.
func (g *Gateway) Unload(name string, c catalog.Class) (types.UnloadResponse, error) {
	path, ok := g.reg.Resolve(name, c)
	if !ok {
		return types.UnloadResponse{}, notFoundError{msg: fmt.Sprintf("%s model '%s' not found in models directory.", c.Title(), name)}
	}
	resp := types.UnloadResponse{Model: name, ModelType: string(c)}
	if g.manager(c).Unload(path) {
		resp.Status = "unloaded"
		resp.Message = "Model unloaded from memory and RAM freed"
	} else {
		resp.Status = "not_loaded"
		resp.Message = "Model was not loaded in memory"
	}
	return resp, nil
}

// ListLoaded lists resident models, chat first.
func (g *Gateway) ListLoaded() []types.LoadedModel {
	out := []types.LoadedModel{}
	for _, c := range catalog.Classes {
		for _, p := range g.manager(c).ListLoaded() {
			out = append(out, types.LoadedModel{
				ModelName: fsutil.Stem(p),
				ModelPath: p,
				ModelType: string(c),
				Loaded:    true,
			})
		}
	}
	return out
}
