package schema

// TextPart 创建文本内容片段
func TextPart(text string) Part {
	return TextContent{Text: text}
}

// ImagePart 创建图片 URL 内容片段
func ImagePart(url string) Part {
	return ImageContent{URL: url}
}

// ImagePartWithDetail 创建指定 detail 的图片内容片段
func ImagePartWithDetail(url, detail string) Part {
	return ImageContent{URL: url, Detail: detail}
}

// SystemMessage 创建系统消息
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: Text(content)}
}

// UserMessage 创建用户消息
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: Text(content)}
}

// UserMessageParts 创建多片段用户消息（如文本 + 图片）
func UserMessageParts(parts ...Part) Message {
	return Message{Role: RoleUser, Content: Parts(parts...)}
}

// AssistantMessage 创建助手消息
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: Text(content)}
}

// AssistantToolCalls 创建只包含工具调用的助手消息
func AssistantToolCalls(calls ...ToolCall) Message {
	out := make([]ToolCall, len(calls))
	copy(out, calls)
	return Message{Role: RoleAssistant, ToolCalls: out}
}

// ToolResultMessage 创建工具调用结果消息
func ToolResultMessage(toolID, content string) Message {
	return Message{Role: RoleTool, ToolID: toolID, Content: Text(content)}
}
