package main

// General API documentation for swaggo. Run `swag init -g cmd/llmserver/docs.go`
// and build with -tags=swagger to serve the UI under /docs.
//
// @title           llmserver API
// @version         1.0.0
// @description     OpenAI-compatible chat completion, tool calling and embedding endpoints over local GGUF models.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
//
// @tag.name         chat
// @tag.description  Chat completions with optional tool calling
// @tag.name         embeddings
// @tag.description  Text embeddings
// @tag.name         models
// @tag.description  Local model listing, download, load and unload
// @tag.name         health
// @tag.description  Liveness and banner
