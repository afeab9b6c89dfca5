package engine

import (
	"encoding/json"
	"strings"
)

const (
	imStart       = "<|im_start|>"
	imEnd         = "<|im_end|>"
	toolCallOpen  = "<tool_call>"
	toolCallClose = "</tool_call>"
)

// QwenStopWords end generation at the assistant turn boundary.
var QwenStopWords = []string{imEnd, "<|endoftext|>"}

const qwenToolsPreamble = `# Tools

You may call one or more functions to assist with the user query.

You are provided with function signatures within <tools></tools> XML tags:
<tools>`

const qwenToolsPostamble = `</tools>

For each function call, return a json object with function name and arguments within <tool_call></tool_call> XML tags:
<tool_call>
{"name": <function-name>, "arguments": <args-json-object>}
</tool_call>`

// FormatQwen renders a conversation as a ChatML prompt ending with an open
// assistant turn. Tools are described in the system turn. Consecutive tool
// results are grouped into one user turn of <tool_response> blocks.
func FormatQwen(msgs []Message, tools []ToolSpec) string {
	var b strings.Builder
	rest := msgs
	if len(tools) > 0 {
		b.WriteString(imStart + "system\n")
		if len(rest) > 0 && rest[0].Role == "system" {
			b.WriteString(rest[0].Content)
			b.WriteString("\n\n")
			rest = rest[1:]
		}
		b.WriteString(qwenToolsPreamble)
		for _, t := range tools {
			js, _ := json.Marshal(t)
			b.WriteByte('\n')
			b.Write(js)
		}
		b.WriteByte('\n')
		b.WriteString(qwenToolsPostamble)
		b.WriteString(imEnd + "\n")
	}
	for i, m := range rest {
		switch m.Role {
		case "tool":
			if i == 0 || rest[i-1].Role != "tool" {
				b.WriteString(imStart + "user")
			}
			b.WriteString("\n<tool_response>\n")
			b.WriteString(m.Content)
			b.WriteString("\n</tool_response>")
			if i == len(rest)-1 || rest[i+1].Role != "tool" {
				b.WriteString(imEnd + "\n")
			}
		case "assistant":
			b.WriteString(imStart + "assistant\n")
			b.WriteString(m.Content)
			for j, c := range m.ToolCalls {
				if j > 0 || m.Content != "" {
					b.WriteByte('\n')
				}
				args := c.Arguments
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				b.WriteString(toolCallOpen + "\n{\"name\": ")
				name, _ := json.Marshal(c.Name)
				b.Write(name)
				b.WriteString(", \"arguments\": ")
				b.WriteString(args)
				b.WriteString("}\n" + toolCallClose)
			}
			b.WriteString(imEnd + "\n")
		default:
			b.WriteString(imStart + m.Role + "\n")
			b.WriteString(m.Content)
			b.WriteString(imEnd + "\n")
		}
	}
	b.WriteString(imStart + "assistant\n")
	return b.String()
}

// ParsedCall is a tool call extracted from generated text. Arguments holds
// the raw JSON object.
type ParsedCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ParseQwenOutput splits generated text into free-text content and
// <tool_call> blocks. A block that is not valid JSON, or has no name, is
// left in the content. An unterminated final block is accepted when its JSON
// is complete.
func ParseQwenOutput(text string) (string, []ParsedCall) {
	var (
		content strings.Builder
		calls   []ParsedCall
	)
	rest := text
	for {
		i := strings.Index(rest, toolCallOpen)
		if i < 0 {
			content.WriteString(rest)
			break
		}
		content.WriteString(rest[:i])
		body := rest[i+len(toolCallOpen):]
		j := strings.Index(body, toolCallClose)
		next := ""
		if j >= 0 {
			next = body[j+len(toolCallClose):]
			body = body[:j]
		}
		if c, ok := parseCall(body); ok {
			calls = append(calls, c)
		} else if j >= 0 {
			content.WriteString(rest[i : len(rest)-len(next)])
		} else {
			content.WriteString(rest[i:])
		}
		rest = next
		if j < 0 {
			break
		}
	}
	return strings.TrimSpace(content.String()), calls
}

func parseCall(body string) (ParsedCall, bool) {
	var c ParsedCall
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &c); err != nil {
		return ParsedCall{}, false
	}
	if c.Name == "" {
		return ParsedCall{}, false
	}
	if len(c.Arguments) == 0 || string(c.Arguments) == "null" {
		c.Arguments = json.RawMessage("{}")
	}
	return c, true
}
