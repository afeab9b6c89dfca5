// Package engine is the boundary to the native inference runtime.
//
// Build tags and runtimes:
//
//   - In-process llama.cpp via go-llama.cpp, enabled with `-tags=llama`.
//     Files: llama.go, llama_cgo.go.
//   - Without the tag, llama_stub.go refuses to open models with a
//     dependency-unavailable error so default builds stay CGO-free.
//
// go-llama.cpp has no chat templating, so prompts are rendered in the Qwen
// ChatML format (qwen.go) and tool calls are extracted from the generated
// text before the native response document is assembled (native.go).
package engine
