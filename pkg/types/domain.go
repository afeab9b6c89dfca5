package types

// Model status values reported by the listing endpoints.
const (
	StatusReadyToUse  = "ready_to_use"
	StatusDownloading = "downloading"
)

// ModelInfo describes a locally available (or downloading) model artifact.
type ModelInfo struct {
	// Model name (file name without extension).
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Name string `json:"name" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	// Path relative to the models directory, or the target file name while downloading.
	// example: chat/Qwen3-4B-Instruct-2507-Q4_K_M.gguf
	Path string `json:"path" example:"chat/Qwen3-4B-Instruct-2507-Q4_K_M.gguf"`
	// Human-readable file size, or "Downloading..." while in flight.
	// example: 2.33 GB
	Size string `json:"size" example:"2.33 GB"`
	// ready_to_use or downloading.
	// example: ready_to_use
	Status string `json:"status" example:"ready_to_use"`
}

// DownloadableModel is an allow-listed catalog entry.
type DownloadableModel struct {
	// Display name (same as the repository id).
	// example: unsloth/Qwen3-4B-Instruct-2507-GGUF
	Name string `json:"name" example:"unsloth/Qwen3-4B-Instruct-2507-GGUF"`
	// Hugging Face repository id.
	// example: unsloth/Qwen3-4B-Instruct-2507-GGUF
	Repository string `json:"repository" example:"unsloth/Qwen3-4B-Instruct-2507-GGUF"`
	// GGUF file fetched from the repository.
	// example: Qwen3-4B-Instruct-2507-Q4_K_M.gguf
	Filename string `json:"filename" example:"Qwen3-4B-Instruct-2507-Q4_K_M.gguf"`
}

// DownloadRequest is the body of POST /v1/models/download.
type DownloadRequest struct {
	// example: unsloth/Qwen3-4B-Instruct-2507-GGUF
	Repository string `json:"repository" validate:"required" example:"unsloth/Qwen3-4B-Instruct-2507-GGUF"`
}

// DownloadResponse acknowledges an accepted background download.
type DownloadResponse struct {
	// example: unsloth/Qwen3-4B-Instruct-2507-GGUF
	Repository string `json:"repository" example:"unsloth/Qwen3-4B-Instruct-2507-GGUF"`
	// example: downloading
	Status string `json:"status" example:"downloading"`
	// Target file name.
	// example: Qwen3-4B-Instruct-2507-Q4_K_M.gguf
	Path string `json:"path" example:"Qwen3-4B-Instruct-2507-Q4_K_M.gguf"`
	// example: Model download started in background
	Message string `json:"message" example:"Model download started in background"`
}

// LoadRequest is the body of POST /v1/models/load and POST /v1/models/unload.
type LoadRequest struct {
	// Model name (file name without .gguf).
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Model string `json:"model" validate:"required" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	// chat or embedding.
	// example: chat
	ModelType string `json:"model_type" validate:"required,oneof=chat embedding" example:"chat"`
}

// LoadResponse reports the outcome of a load.
type LoadResponse struct {
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Model string `json:"model" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	// example: chat
	ModelType string `json:"model_type" example:"chat"`
	// loaded or already_loaded.
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// example: Model loaded successfully into memory
	Message string `json:"message" example:"Model loaded successfully into memory"`
	// Absolute path of the backing file.
	// example: /srv/models/chat/Qwen3-4B-Instruct-2507-Q4_K_M.gguf
	ModelPath string `json:"model_path" example:"/srv/models/chat/Qwen3-4B-Instruct-2507-Q4_K_M.gguf"`
}

// UnloadResponse reports the outcome of an unload.
type UnloadResponse struct {
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Model string `json:"model" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	// example: chat
	ModelType string `json:"model_type" example:"chat"`
	// unloaded or not_loaded.
	// example: unloaded
	Status string `json:"status" example:"unloaded"`
	// example: Model unloaded from memory and RAM freed
	Message string `json:"message" example:"Model unloaded from memory and RAM freed"`
}

// LoadedModel is an entry of GET /v1/models/loaded.
type LoadedModel struct {
	// example: Qwen3-Embedding-4B-Q4_K_M
	ModelName string `json:"model_name" example:"Qwen3-Embedding-4B-Q4_K_M"`
	// example: /srv/models/embed/Qwen3-Embedding-4B-Q4_K_M.gguf
	ModelPath string `json:"model_path" example:"/srv/models/embed/Qwen3-Embedding-4B-Q4_K_M.gguf"`
	// example: embedding
	ModelType string `json:"model_type" example:"embedding"`
	// example: true
	Loaded bool `json:"loaded" example:"true"`
}
