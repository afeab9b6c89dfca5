//go:build !llama

package engine

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = false

// openLlama refuses to construct handles without the 'llama' build tag so
// production binaries never serve mocked output.
func openLlama(path string, opts Options) (Model, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
